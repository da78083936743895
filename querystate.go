// Package querystate keeps typed application state in sync with the query
// string of a browser-style location.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/querystate"
//
// Usage:
//
//	b := querystate.NewBrowser(querystate.State{"page": 1.0})
//	p := b.Provide(querystate.NewMemoryHistory(loc), querystate.BrowserConfig{
//	    Schema: querystate.Schema{"page": querystate.Number, "q": querystate.String},
//	})
//	defer p.Close()
//
//	res := p.Use(querystate.UseOptions{})
//	page, _ := res.State.Number("page")
//	err := res.SetState(querystate.State{"page": page + 1}, nil)
package querystate

import (
	"log/slog"

	"github.com/vango-dev/querystate/pkg/history"
	"github.com/vango-dev/querystate/pkg/location"
	"github.com/vango-dev/querystate/pkg/provider"
	"github.com/vango-dev/querystate/pkg/schema"
	"github.com/vango-dev/querystate/pkg/selector"
	"github.com/vango-dev/querystate/pkg/store"
	"github.com/vango-dev/querystate/pkg/urlstate"
)

// =============================================================================
// Data model (re-export)
// =============================================================================

type (
	State    = urlstate.State
	Options  = location.Options
	Location = location.Location
	Schema   = schema.Schema
	Codec    = schema.Codec
	Selector = selector.Selector
	Snapshot = store.Snapshot
)

// Built-in codecs.
var (
	Identity = schema.Identity
	Boolean  = schema.Boolean
	String   = schema.String
	Number   = schema.Number
)

// Custom builds a codec from a store-side and a location-side conversion.
var Custom = schema.Custom

// =============================================================================
// Converters (re-export from pkg/urlstate)
// =============================================================================

// MapState reads typed state from a location.
var MapState = urlstate.MapState

// UpdateLocationFromState writes state into a location and pushes the result.
var UpdateLocationFromState = urlstate.UpdateLocationFromState

// Settings groups the schema and selector used by MapState.
type Settings = urlstate.Settings

// =============================================================================
// History (re-export from pkg/history)
// =============================================================================

type (
	History  = history.History
	Listener = history.Listener
	Unlisten = history.Unlisten
)

// ErrPushNotAllowed is returned when writing through a static history.
var ErrPushNotAllowed = history.ErrPushNotAllowed

// NewMemoryHistory returns an in-memory navigable history.
func NewMemoryHistory(initial Location) *history.Memory {
	return history.NewMemory(initial)
}

// NewStaticHistory returns a history fixed at loc.
func NewStaticHistory(loc Location) History {
	return history.NewStatic(loc, nil)
}

// =============================================================================
// Provider (re-export from pkg/provider)
// =============================================================================

type (
	Provider   = provider.Provider
	UseOptions = provider.UseOptions
	Result     = provider.Result
)

// BrowserConfig holds setup values for Browser.Provide.
type BrowserConfig struct {
	// InitialOptions are merged over the history's entry state.
	InitialOptions Options

	// Schema converts fields.
	Schema Schema

	// Includes and Excludes select fields; nil means no restriction.
	Includes []string
	Excludes []string

	// InitialLocation is used when no live history is given.
	InitialLocation Location

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (c BrowserConfig) provider() provider.Config {
	return provider.Config{
		InitialOptions: c.InitialOptions,
		Schema:         c.Schema,
		Includes:       c.Includes,
		Excludes:       c.Excludes,
		Logger:         c.Logger,
	}
}

// Browser creates Providers bound to a browser-style history.
type Browser struct {
	container *provider.Container
}

// NewBrowser returns a Browser whose providers start from initialState.
func NewBrowser(initialState State) *Browser {
	return &Browser{container: provider.New(initialState)}
}

// InitialState returns a copy of the browser's initial state.
func (b *Browser) InitialState() State {
	return b.container.InitialState()
}

// Provide attaches a Provider to live. When live is nil a static history at
// cfg.InitialLocation is used; it can be read but not written.
func (b *Browser) Provide(live History, cfg BrowserConfig) *Provider {
	return b.container.Provide(history.New(cfg.InitialLocation, live), cfg.provider())
}

// With is like Provide, runs fn and closes the Provider afterwards.
func (b *Browser) With(live History, cfg BrowserConfig, fn func(*Provider) error) error {
	return b.container.With(history.New(cfg.InitialLocation, live), cfg.provider(), fn)
}
