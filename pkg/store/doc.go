// Package store holds the current location and navigation options in a
// single slot.
//
// The slot is replaced wholesale by an UPDATE action, usually dispatched from
// a history notification:
//
//	s := store.New(h.Location(), location.Options{"scroll": true})
//	unlisten := h.Listen(s.Update)
//	defer unlisten()
//
//	s.Subscribe(func(snap store.Snapshot) {
//	    render(snap.Location)
//	})
//
// Observers run synchronously, in registration order, after every dispatch.
// Updates are neither batched nor debounced.
package store
