package urlstate

import (
	"github.com/vango-dev/querystate/pkg/location"
	"github.com/vango-dev/querystate/pkg/schema"
	"github.com/vango-dev/querystate/pkg/selector"
	"github.com/vango-dev/querystate/pkg/urlparam"
)

// PushFunc navigates to path, attaching options to the new history entry.
type PushFunc func(path string, options location.Options) error

// Settings configure the read path.
type Settings struct {
	Schema   schema.Schema
	Selector selector.Selector
}

// MapState computes typed state from initial values and the query of loc.
func MapState(initial State, loc location.Location, settings Settings) State {
	return NewLocationQuerySet(initial).
		Parse(loc).
		Select(settings.Selector).
		ConvertToObject(settings.Schema)
}

// BuildPath returns the path that writing state onto loc would produce. The
// pathname of loc is kept as is.
func BuildPath(loc location.Location, sch schema.Schema, state State) string {
	query := NewObjectQuerySet(state).ConvertToString(sch, urlparam.FromLocation(loc))
	if query == "" {
		return loc.Pathname
	}
	return loc.Pathname + "?" + query
}

// UpdateLocationFromState writes the schema fields of state onto the query of
// loc and pushes the result. Query parameters the write does not own are
// preserved. The push error, if any, is returned unchanged.
func UpdateLocationFromState(loc location.Location, push PushFunc, sch schema.Schema, state State, options location.Options) error {
	if options == nil {
		options = location.Options{}
	}
	return push(BuildPath(loc, sch, state), options)
}

// Writer binds a location, a push function and a schema so state can be
// written with a single call.
type Writer struct {
	Location location.Location
	Push     PushFunc
	Schema   schema.Schema
}

// Apply writes state to the bound location.
func (w Writer) Apply(state State, options location.Options) error {
	return UpdateLocationFromState(w.Location, w.Push, w.Schema, state, options)
}

// Path returns the path Apply would push for state.
func (w Writer) Path(state State) string {
	return BuildPath(w.Location, w.Schema, state)
}
