package history

import (
	"errors"
	"log/slog"

	qerrors "github.com/vango-dev/querystate/internal/errors"
	"github.com/vango-dev/querystate/pkg/location"
)

// ErrPushNotAllowed is returned by Static.Push.
var ErrPushNotAllowed = errors.New("push is not allowed in static history")

// Listener receives the new location after every navigation.
type Listener func(location.Location)

// Unlisten removes a listener. Calling it more than once is harmless.
type Unlisten func()

// History is the navigation collaborator.
type History interface {
	// Location returns the current location, including its entry state.
	Location() location.Location

	// Listen registers fn for location changes.
	Listen(fn Listener) Unlisten

	// Push navigates to path and attaches state to the new entry.
	Push(path string, state location.Options) error
}

// New returns live when it is non-nil, otherwise a Static history fixed at
// initial.
func New(initial location.Location, live History) History {
	if live != nil {
		return live
	}
	return NewStatic(initial, nil)
}

// Static is a history with a fixed location.
type Static struct {
	loc    location.Location
	logger *slog.Logger
}

// NewStatic returns a static history at loc. A nil logger uses
// slog.Default().
func NewStatic(loc location.Location, logger *slog.Logger) *Static {
	if logger == nil {
		logger = slog.Default()
	}
	return &Static{loc: loc, logger: logger}
}

// Location returns the fixed location.
func (s *Static) Location() location.Location {
	return s.loc
}

// Listen logs a warning and returns a no-op Unlisten. fn is never called.
func (s *Static) Listen(Listener) Unlisten {
	s.logger.Warn(qerrors.New("Q002").Message, "pathname", s.loc.Pathname)
	return func() {}
}

// Push always fails.
func (s *Static) Push(path string, _ location.Options) error {
	return qerrors.New("Q001").
		WithDetail("attempted path " + path).
		Wrap(ErrPushNotAllowed)
}
