package wshistory

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	qerrors "github.com/vango-dev/querystate/internal/errors"
)

// Config configures the WebSocket handler.
type Config struct {
	// ReadBufferSize and WriteBufferSize size the upgrader's buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the Origin header. Nil accepts same-origin
	// requests only.
	CheckOrigin func(r *http.Request) bool

	// HandshakeTimeout bounds the wait for the hello frame.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each frame write. Zero disables it.
	WriteTimeout time.Duration

	// MaxMessageSize limits incoming frames.
	MaxMessageSize int64

	// Logger receives connection logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     10 * time.Second,
		MaxMessageSize:   64 * 1024,
	}
}

// ConnectFunc is called once per connection after the handshake. The
// context is cancelled when the connection ends; the function should return
// by then.
type ConnectFunc func(ctx context.Context, h *History)

// Handler upgrades requests to WebSocket histories.
type Handler struct {
	config    Config
	upgrader  websocket.Upgrader
	onConnect ConnectFunc
}

// NewHandler creates a Handler. Zero fields of cfg take their defaults.
func NewHandler(cfg Config, onConnect ConnectFunc) *Handler {
	def := DefaultConfig()
	if cfg.ReadBufferSize == 0 {
		cfg.ReadBufferSize = def.ReadBufferSize
	}
	if cfg.WriteBufferSize == 0 {
		cfg.WriteBufferSize = def.WriteBufferSize
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = def.HandshakeTimeout
	}
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Handler{
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		onConnect: onConnect,
	}
}

// ServeHTTP implements http.Handler. It blocks until the connection ends and
// the ConnectFunc has returned.
func (hd *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := hd.config.Logger

	conn, err := hd.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "error", err)
		return
	}

	conn.SetReadLimit(hd.config.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(hd.config.HandshakeTimeout))

	_, data, err := conn.ReadMessage()
	if err != nil {
		logger.Error("handshake read failed", "error", err)
		conn.Close()
		return
	}

	ft, hello, err := DecodeFrame(data)
	if err != nil || ft != FrameHello {
		qe := qerrors.New("Q301")
		if err != nil {
			qe = qe.Wrap(err)
		}
		logger.Error("handshake failed", "error", qe, "type", ft)
		if frame, encErr := EncodeFrame(FrameError, Message{Code: qe.Code, Error: qe.Message}); encErr == nil {
			_ = conn.WriteMessage(websocket.BinaryMessage, frame)
		}
		conn.Close()
		return
	}

	_ = conn.SetReadDeadline(time.Time{})

	h := newHistory(uuid.NewString(), conn, hello.Location(), hd.config)
	h.logger.Info("history connected", "pathname", hello.Pathname, "search", hello.Search)

	ctx, cancel := context.WithCancel(r.Context())
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		if hd.onConnect != nil {
			hd.onConnect(ctx, h)
		}
	}()

	h.readLoop()
	cancel()
	<-finished
	h.logger.Info("history disconnected")
}
