package wshistory

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	qerrors "github.com/vango-dev/querystate/internal/errors"
	"github.com/vango-dev/querystate/pkg/history"
	"github.com/vango-dev/querystate/pkg/location"
)

// ErrClosed is returned by Push once the connection has gone away.
var ErrClosed = errors.New("wshistory: connection closed")

// History is the server-side mirror of a connected client's history.
type History struct {
	id     string
	conn   *websocket.Conn
	logger *slog.Logger

	writeTimeout time.Duration
	writeMu      sync.Mutex

	mu        sync.Mutex
	loc       location.Location
	listeners []*listenerEntry
	closed    bool

	done      chan struct{}
	closeOnce sync.Once
}

type listenerEntry struct {
	fn history.Listener
}

var _ history.History = (*History)(nil)

func newHistory(id string, conn *websocket.Conn, initial location.Location, cfg Config) *History {
	return &History{
		id:           id,
		conn:         conn,
		logger:       cfg.Logger.With("conn", id),
		writeTimeout: cfg.WriteTimeout,
		loc:          initial,
		done:         make(chan struct{}),
	}
}

// ID returns the connection id.
func (h *History) ID() string {
	return h.id
}

// Done is closed when the connection ends.
func (h *History) Done() <-chan struct{} {
	return h.done
}

// Location returns the client's current location.
func (h *History) Location() location.Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loc
}

// Listen registers fn for location changes from either side.
func (h *History) Listen(fn history.Listener) history.Unlisten {
	e := &listenerEntry{fn: fn}
	h.mu.Lock()
	h.listeners = append(h.listeners, e)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, cur := range h.listeners {
				if cur == e {
					h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Push navigates the client to path. The local location is updated and
// listeners are notified before the push frame is written.
func (h *History) Push(path string, state location.Options) error {
	loc := location.Split(path)
	loc.State = state.Clone()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return qerrors.New("Q302").WithDetail("push to " + path).Wrap(ErrClosed)
	}
	h.loc = loc
	h.mu.Unlock()

	h.notify(loc)

	if err := h.write(FramePush, MessageFromLocation(loc)); err != nil {
		return qerrors.New("Q302").WithDetail("push to " + path).Wrap(err)
	}
	return nil
}

// Close ends the connection. It is safe to call more than once.
func (h *History) Close() error {
	var err error
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		h.listeners = nil
		h.mu.Unlock()

		h.writeMu.Lock()
		_ = h.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		err = h.conn.Close()
		h.writeMu.Unlock()

		close(h.done)
	})
	return err
}

// readLoop applies client navigations until the connection fails.
func (h *History) readLoop() {
	defer h.Close()

	for {
		_, data, err := h.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Error("read error", "error", err)
			}
			return
		}

		ft, msg, err := DecodeFrame(data)
		if err != nil {
			h.logger.Warn("frame decode error", "error", err)
			continue
		}

		switch ft {
		case FramePop, FrameHello:
			loc := msg.Location()
			h.mu.Lock()
			h.loc = loc
			h.mu.Unlock()
			h.logger.Debug("client navigated", "pathname", loc.Pathname, "search", loc.Search)
			h.notify(loc)
		default:
			h.logger.Warn("unexpected frame type", "type", ft)
		}
	}
}

func (h *History) write(ft FrameType, msg Message) error {
	data, err := EncodeFrame(ft, msg)
	if err != nil {
		return err
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if h.writeTimeout > 0 {
		_ = h.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	}
	return h.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (h *History) notify(loc location.Location) {
	h.mu.Lock()
	listeners := make([]*listenerEntry, len(h.listeners))
	copy(listeners, h.listeners)
	h.mu.Unlock()

	for _, e := range listeners {
		e.fn(loc)
	}
}
