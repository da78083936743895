// Package urlstate converts between a location's query string and typed
// application state.
//
// The read path merges an initial state with the parsed query, keeps the
// fields admitted by a selector and converts each one through its schema
// codec:
//
//	state := urlstate.MapState(
//	    urlstate.State{"page": 1},
//	    location.Location{Pathname: "/search", Search: "?name=Alice&age=30"},
//	    urlstate.Settings{Schema: schema.Schema{"name": schema.String, "age": schema.Number}},
//	)
//	// state == State{"name": "Alice", "age": 30.0}
//
// The write path converts schema fields back to text, merges them over the
// current query so foreign parameters survive, drops empty values and pushes
// the resulting path:
//
//	w := urlstate.Writer{Location: loc, Push: h.Push, Schema: sch}
//	err := w.Apply(urlstate.State{"q": "shoes"}, nil)
//	// push("/search?foo=bar&q=shoes", location.Options{})
//
// Fields without a schema entry never appear in typed state. A converted
// value that is empty removes its key from the query string, which means a
// Number field set to 0 is written as "not set".
package urlstate
