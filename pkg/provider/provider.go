package provider

import (
	"errors"
	"log/slog"
	"reflect"
	"sync"

	qerrors "github.com/vango-dev/querystate/internal/errors"
	"github.com/vango-dev/querystate/pkg/history"
	"github.com/vango-dev/querystate/pkg/location"
	"github.com/vango-dev/querystate/pkg/schema"
	"github.com/vango-dev/querystate/pkg/selector"
	"github.com/vango-dev/querystate/pkg/store"
	"github.com/vango-dev/querystate/pkg/urlstate"
)

// ErrClosed is returned by writes on a closed Provider.
var ErrClosed = errors.New("provider is closed")

// Config holds setup-time values for a Provider.
type Config struct {
	// InitialOptions are merged over the state of the history's location.
	InitialOptions location.Options

	// Schema converts fields. Fields outside it never reach typed state.
	Schema schema.Schema

	// Includes and Excludes select fields; nil means no restriction.
	Includes []string
	Excludes []string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// UseOptions override setup-time values for one Use call. Nil fields inherit.
type UseOptions struct {
	Includes []string
	Excludes []string
	Schema   schema.Schema
}

// Result is what a consumer sees.
type Result struct {
	State    urlstate.State
	Options  location.Options
	SetState func(state urlstate.State, options location.Options) error
}

// Container creates Providers sharing one initial state.
type Container struct {
	initialState urlstate.State
}

// New returns a Container for initialState.
func New(initialState urlstate.State) *Container {
	if initialState == nil {
		initialState = urlstate.State{}
	}
	return &Container{initialState: initialState.Clone()}
}

// InitialState returns a copy of the container's initial state.
func (c *Container) InitialState() urlstate.State {
	return c.initialState.Clone()
}

// Provide attaches a new Provider to h.
func (c *Container) Provide(h history.History, cfg Config) *Provider {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sch := cfg.Schema
	if sch == nil {
		sch = schema.Schema{}
	}

	seed := h.Location()
	p := &Provider{
		initialState: c.initialState,
		history:      h,
		store:        store.New(seed, cfg.InitialOptions),
		schema:       sch,
		selector:     selector.New(cfg.Includes, cfg.Excludes),
		logger:       logger,
	}
	p.attach(seed)
	return p
}

// With attaches a Provider to h, runs fn and closes the Provider on every
// exit path, panics included.
func (c *Container) With(h history.History, cfg Config, fn func(*Provider) error) error {
	p := c.Provide(h, cfg)
	defer p.Close()
	return fn(p)
}

// Provider is the explicit context handed to consumers.
type Provider struct {
	initialState urlstate.State
	history      history.History
	store        *store.Store
	schema       schema.Schema
	selector     selector.Selector
	logger       *slog.Logger

	mu        sync.Mutex
	unlisten  history.Unlisten
	closed    bool
	closeOnce sync.Once
}

// attach registers the listener, then catches up with any navigation that
// happened between reading seed and the registration.
func (p *Provider) attach(seed location.Location) {
	unlisten := p.history.Listen(p.onLocation)
	p.mu.Lock()
	p.unlisten = unlisten
	p.mu.Unlock()

	if cur := p.history.Location(); !sameLocation(seed, cur) {
		p.logger.Debug("location changed during attach", "pathname", cur.Pathname, "search", cur.Search)
		p.store.Update(cur)
	}
}

func sameLocation(a, b location.Location) bool {
	return a.Pathname == b.Pathname && a.Search == b.Search && reflect.DeepEqual(a.State, b.State)
}

func (p *Provider) onLocation(loc location.Location) {
	if p.Closed() {
		return
	}
	p.logger.Debug("location changed", "pathname", loc.Pathname, "search", loc.Search)
	p.store.Update(loc)
}

// Snapshot returns the current store contents.
func (p *Provider) Snapshot() store.Snapshot {
	return p.store.Snapshot()
}

// Schema returns the setup-time schema.
func (p *Provider) Schema() schema.Schema {
	return p.schema
}

// Selector returns the setup-time selector.
func (p *Provider) Selector() selector.Selector {
	return p.selector
}

// Use computes typed state from the current location and returns it with
// the current options and a SetState bound to the current location.
func (p *Provider) Use(opts UseOptions) Result {
	snap := p.store.Snapshot()

	sch := p.schema
	if opts.Schema != nil {
		sch = opts.Schema
	}
	sel := p.selector.Override(selector.New(opts.Includes, opts.Excludes))

	w := urlstate.Writer{
		Location: snap.Location,
		Push:     p.push,
		Schema:   sch,
	}

	return Result{
		State:    urlstate.MapState(p.initialState, snap.Location, urlstate.Settings{Schema: sch, Selector: sel}),
		Options:  snap.Options,
		SetState: w.Apply,
	}
}

// Push navigates through the history.
func (p *Provider) Push(path string, options location.Options) error {
	return p.push(path, options)
}

func (p *Provider) push(path string, options location.Options) error {
	if p.Closed() {
		return qerrors.New("Q201").Wrap(ErrClosed)
	}
	p.logger.Debug("push", "path", path)
	return p.history.Push(path, options)
}

// Subscribe registers fn to run after every location change.
func (p *Provider) Subscribe(fn func(store.Snapshot)) func() {
	return p.store.Subscribe(fn)
}

// Closed reports whether Close has been called.
func (p *Provider) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close detaches from the history. Only the first call has an effect.
func (p *Provider) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		unlisten := p.unlisten
		p.unlisten = nil
		p.mu.Unlock()

		if unlisten != nil {
			unlisten()
		}
	})
	return nil
}
