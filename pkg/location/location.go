// Package location defines the navigable location shared by the history,
// store and converter packages.
package location

import "strings"

// Options holds auxiliary values attached to a navigation (scroll flags,
// origin markers, ...). Options travel with a push but are never written to
// the query string.
type Options map[string]any

// Location is a browser-style location snapshot.
type Location struct {
	// Pathname is carried through unchanged by every converter.
	Pathname string `json:"pathname" msgpack:"pathname"`

	// Search is the raw query string, usually with a leading "?".
	Search string `json:"search" msgpack:"search"`

	// State holds the history entry state, if any.
	State Options `json:"state,omitempty" msgpack:"state,omitempty"`
}

// Empty returns a location with an empty pathname and search.
func Empty() Location {
	return Location{}
}

// Query returns the search component with a single leading "?" removed.
func (l Location) Query() string {
	return strings.TrimPrefix(l.Search, "?")
}

// Path reassembles pathname and search.
func (l Location) Path() string {
	q := l.Query()
	if q == "" {
		return l.Pathname
	}
	return l.Pathname + "?" + q
}

// WithoutState returns a copy of l with State cleared.
func (l Location) WithoutState() Location {
	return Location{Pathname: l.Pathname, Search: l.Search}
}

// Split parses a path such as "/search?q=shoes#top" into a Location.
// The fragment is discarded. A non-empty search keeps its leading "?".
func Split(path string) Location {
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}
	pathname, query, found := strings.Cut(path, "?")
	loc := Location{Pathname: pathname}
	if found && query != "" {
		loc.Search = "?" + query
	}
	return loc
}

// Merge returns a new Options with the entries of base overlaid by over.
// Either argument may be nil; the result is never nil.
func Merge(base, over Options) Options {
	out := make(Options, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of o. Nested maps and slices of the JSON-like
// kinds (map[string]any, []any, []string, []float64) are copied; other
// values are shared. The result is never nil.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Options:
		return val.Clone()
	case map[string]any:
		return map[string]any(Options(val).Clone())
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case []float64:
		return append([]float64(nil), val...)
	default:
		return v
	}
}
