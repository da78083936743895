package urlstate

import (
	"sort"

	"github.com/vango-dev/querystate/pkg/location"
	"github.com/vango-dev/querystate/pkg/schema"
	"github.com/vango-dev/querystate/pkg/selector"
	"github.com/vango-dev/querystate/pkg/urlparam"
)

// LocationQuerySet carries state on the read path: initial values merged with
// raw query values, then selected and converted to typed state. Every step
// returns a new set.
type LocationQuerySet struct {
	state map[string]any
}

// NewLocationQuerySet returns a set seeded with initial.
func NewLocationQuerySet(initial State) LocationQuerySet {
	return LocationQuerySet{state: copyFields(initial)}
}

// Parse merges the query of loc over the set. Parsed values win on key
// collision and are string or []string.
func (q LocationQuerySet) Parse(loc location.Location) LocationQuerySet {
	merged := copyFields(q.state)
	for k, v := range urlparam.FromLocation(loc).Map() {
		merged[k] = v
	}
	return LocationQuerySet{state: merged}
}

// Select keeps the fields admitted by sel.
func (q LocationQuerySet) Select(sel selector.Selector) LocationQuerySet {
	return LocationQuerySet{state: selector.Select(q.state, sel)}
}

// Fields returns the raw merged values.
func (q LocationQuerySet) Fields() map[string]any {
	return copyFields(q.state)
}

// ConvertToObject converts each field with a schema entry through
// ParseForStore. Fields without an entry and fields whose converted value is
// empty are left out.
func (q LocationQuerySet) ConvertToObject(sch schema.Schema) State {
	out := make(State, len(q.state))
	for name, raw := range q.state {
		codec, ok := sch.Lookup(name)
		if !ok {
			continue
		}
		v := codec.ParseForStore(raw)
		if keepConverted(v) {
			out[name] = v
		}
	}
	return out
}

// ObjectQuerySet carries typed state on the write path.
type ObjectQuerySet struct {
	state State
}

// NewObjectQuerySet returns a set holding state.
func NewObjectQuerySet(state State) ObjectQuerySet {
	return ObjectQuerySet{state: State(copyFields(state))}
}

// Select keeps the fields admitted by sel.
func (q ObjectQuerySet) Select(sel selector.Selector) ObjectQuerySet {
	return ObjectQuerySet{state: selector.Select(q.state, sel)}
}

// ConvertState converts each field with a schema entry through
// ParseForLocation. Fields are visited in name order so that new query keys
// are appended deterministically.
func (q ObjectQuerySet) ConvertState(sch schema.Schema) *urlparam.Values {
	names := make([]string, 0, len(q.state))
	for name := range q.state {
		names = append(names, name)
	}
	sort.Strings(names)

	out := urlparam.New()
	for _, name := range names {
		codec, ok := sch.Lookup(name)
		if !ok {
			continue
		}
		out.SetValue(name, codec.ParseForLocation(q.state[name]))
	}
	return out
}

// ConvertToString merges the converted fields over existing, drops keys
// whose value is empty and encodes the result. existing is not modified and
// may be nil.
func (q ObjectQuerySet) ConvertToString(sch schema.Schema, existing *urlparam.Values) string {
	merged := urlparam.New()
	if existing != nil {
		merged = existing.Clone()
	}
	converted := q.ConvertState(sch)
	for _, k := range converted.Keys() {
		merged.Set(k, converted.All(k)...)
	}
	merged.Filter(func(_ string, vals []string) bool {
		return filled(vals)
	})
	return merged.Encode()
}

// filled reports whether a wire value should be written. An empty list and a
// single empty string both mean "cleared".
func filled(vals []string) bool {
	switch len(vals) {
	case 0:
		return false
	case 1:
		return vals[0] != ""
	default:
		return true
	}
}

func copyFields[M ~map[string]any](in M) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
