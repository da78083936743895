// Package provider ties a history, a store and the urlstate converters
// together and hands consumers their typed state.
//
// A Container is created once per state shape with its initial state. Each
// Provide call attaches a Provider to a history: it seeds a store from the
// history's location, subscribes to location changes and keeps the schema
// and selector set at setup time. Consumers call Use to read typed state and
// get a SetState function that writes back through the history:
//
//	c := provider.New(urlstate.State{"page": 1})
//	p := c.Provide(h, provider.Config{
//	    Schema: schema.Schema{"q": schema.String, "page": schema.Number},
//	})
//	defer p.Close()
//
//	res := p.Use(provider.UseOptions{})
//	q := res.State.String("q")
//	err := res.SetState(urlstate.State{"q": "shoes", "page": 1}, nil)
//
// Use recomputes state from the store on every call; nothing is cached.
// Subscribe registers a callback run synchronously after each location
// change. Close detaches from the history exactly once; With wraps a
// Provider's lifetime around a function so detaching happens on every exit
// path.
package provider
