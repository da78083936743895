package provider

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/querystate/pkg/history"
	"github.com/vango-dev/querystate/pkg/location"
	"github.com/vango-dev/querystate/pkg/schema"
	"github.com/vango-dev/querystate/pkg/store"
	"github.com/vango-dev/querystate/pkg/urlstate"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var personSchema = schema.Schema{"name": schema.String, "age": schema.Number}

// countingHistory records Listen/Unlisten calls around a Memory history.
type countingHistory struct {
	*history.Memory
	listens   int
	unlistens int
}

func (h *countingHistory) Listen(fn history.Listener) history.Unlisten {
	h.listens++
	inner := h.Memory.Listen(fn)
	return func() {
		h.unlistens++
		inner()
	}
}

func TestUseReadsLocation(t *testing.T) {
	h := history.NewMemory(location.Location{Pathname: "/people", Search: "?name=Alice&age=30&utm=x"})
	p := New(nil).Provide(h, Config{Schema: personSchema, Logger: quietLogger})
	defer p.Close()

	res := p.Use(UseOptions{})
	assert.Equal(t, urlstate.State{"name": "Alice", "age": float64(30)}, res.State)

	res = p.Use(UseOptions{Excludes: []string{"age"}})
	assert.Equal(t, urlstate.State{"name": "Alice"}, res.State)

	res = p.Use(UseOptions{Schema: schema.Schema{"utm": schema.String}})
	assert.Equal(t, urlstate.State{"utm": "x"}, res.State)
}

func TestSetupSelectorAndOverride(t *testing.T) {
	h := history.NewMemory(location.Location{Search: "?name=Alice&age=30"})
	p := New(nil).Provide(h, Config{Schema: personSchema, Includes: []string{"name"}, Logger: quietLogger})
	defer p.Close()

	assert.Equal(t, urlstate.State{"name": "Alice"}, p.Use(UseOptions{}).State)
	assert.Equal(t, urlstate.State{"age": float64(30)}, p.Use(UseOptions{Includes: []string{"age"}}).State)
}

func TestInitialState(t *testing.T) {
	h := history.NewMemory(location.Location{Pathname: "/"})
	c := New(urlstate.State{"name": "guest", "age": 18})
	p := c.Provide(h, Config{Schema: personSchema, Logger: quietLogger})
	defer p.Close()

	assert.Equal(t, urlstate.State{"name": "guest", "age": float64(18)}, p.Use(UseOptions{}).State)
	assert.Equal(t, urlstate.State{"name": "guest", "age": 18}, c.InitialState())
}

func TestSetStateRoundTrip(t *testing.T) {
	h := history.NewMemory(location.Location{Pathname: "/search", Search: "?foo=bar"})
	p := New(nil).Provide(h, Config{
		Schema:         schema.Schema{"q": schema.String},
		InitialOptions: location.Options{"scroll": true},
		Logger:         quietLogger,
	})
	defer p.Close()

	var snaps []store.Snapshot
	p.Subscribe(func(s store.Snapshot) { snaps = append(snaps, s) })

	res := p.Use(UseOptions{})
	assert.Equal(t, true, res.Options["scroll"])

	require.NoError(t, res.SetState(urlstate.State{"q": "shoes"}, location.Options{"scroll": false}))

	assert.Equal(t, "/search", h.Location().Pathname)
	assert.Equal(t, "?foo=bar&q=shoes", h.Location().Search)

	require.Len(t, snaps, 1)
	assert.Equal(t, "?foo=bar&q=shoes", snaps[0].Location.Search)

	res = p.Use(UseOptions{})
	assert.Equal(t, urlstate.State{"q": "shoes"}, res.State)
	assert.Equal(t, false, res.Options["scroll"])
}

func TestLocationStateSeedsOptions(t *testing.T) {
	h := history.NewMemory(location.Location{Pathname: "/", State: location.Options{"from": "link", "scroll": true}})
	p := New(nil).Provide(h, Config{InitialOptions: location.Options{"scroll": false}, Logger: quietLogger})
	defer p.Close()

	opts := p.Use(UseOptions{}).Options
	assert.Equal(t, "link", opts["from"])
	assert.Equal(t, false, opts["scroll"])
}

func TestStaticHistory(t *testing.T) {
	h := history.New(location.Location{Pathname: "/ssr", Search: "?q=x"}, nil)
	p := New(nil).Provide(h, Config{Schema: schema.Schema{"q": schema.String}, Logger: quietLogger})
	defer p.Close()

	res := p.Use(UseOptions{})
	assert.Equal(t, urlstate.State{"q": "x"}, res.State)

	err := res.SetState(urlstate.State{"q": "y"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, history.ErrPushNotAllowed))
}

func TestCloseUnlistensOnce(t *testing.T) {
	h := &countingHistory{Memory: history.NewMemory(location.Location{Pathname: "/"})}
	p := New(nil).Provide(h, Config{Logger: quietLogger})
	assert.Equal(t, 1, h.listens)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, h.unlistens)
	assert.True(t, p.Closed())

	require.NoError(t, h.Push("/after", nil))
	assert.Equal(t, "/", p.Snapshot().Location.Pathname, "closed provider must not update")

	err := p.Push("/x", nil)
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestWithClosesOnEveryPath(t *testing.T) {
	c := New(nil)

	t.Run("success", func(t *testing.T) {
		h := &countingHistory{Memory: history.NewMemory(location.Location{})}
		err := c.With(h, Config{Logger: quietLogger}, func(p *Provider) error {
			return p.Push("/ok", nil)
		})
		require.NoError(t, err)
		assert.Equal(t, 1, h.unlistens)
	})

	t.Run("error", func(t *testing.T) {
		h := &countingHistory{Memory: history.NewMemory(location.Location{})}
		boom := errors.New("boom")
		err := c.With(h, Config{Logger: quietLogger}, func(*Provider) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, h.unlistens)
	})

	t.Run("panic", func(t *testing.T) {
		h := &countingHistory{Memory: history.NewMemory(location.Location{})}
		assert.Panics(t, func() {
			_ = c.With(h, Config{Logger: quietLogger}, func(*Provider) error { panic("boom") })
		})
		assert.Equal(t, 1, h.unlistens)
	})
}

func TestEachNotificationUpdatesOnce(t *testing.T) {
	h := history.NewMemory(location.Location{Pathname: "/"})
	p := New(nil).Provide(h, Config{Logger: quietLogger})
	defer p.Close()

	count := 0
	p.Subscribe(func(store.Snapshot) { count++ })

	require.NoError(t, h.Push("/a", nil))
	require.NoError(t, h.Push("/b", nil))
	h.Back()
	assert.Equal(t, 3, count)
	assert.Equal(t, "/a", p.Snapshot().Location.Pathname)
}

// navigatingHistory performs a navigation the first time its location is
// read, before any listener is registered.
type navigatingHistory struct {
	*history.Memory
	target string
	reads  int
}

func (h *navigatingHistory) Location() location.Location {
	h.reads++
	loc := h.Memory.Location()
	if h.reads == 1 {
		_ = h.Memory.Push(h.target, nil)
	}
	return loc
}

func TestProvideCatchesNavigationDuringAttach(t *testing.T) {
	h := &navigatingHistory{
		Memory: history.NewMemory(location.Location{Pathname: "/p", Search: "?q=old"}),
		target: "/p?q=new",
	}
	p := New(nil).Provide(h, Config{Schema: schema.Schema{"q": schema.String}, Logger: quietLogger})
	defer p.Close()

	assert.Equal(t, "?q=new", p.Snapshot().Location.Search)
	assert.Equal(t, "new", p.Use(UseOptions{}).State.String("q"))

	require.NoError(t, h.Push("/p?q=later", nil))
	assert.Equal(t, "later", p.Use(UseOptions{}).State.String("q"))
}

func TestProvideKeepsInitialOptionsWithoutNavigation(t *testing.T) {
	h := history.NewMemory(location.Location{Pathname: "/"})
	p := New(nil).Provide(h, Config{InitialOptions: location.Options{"scroll": true}, Logger: quietLogger})
	defer p.Close()

	assert.Equal(t, true, p.Snapshot().Options["scroll"])
}
