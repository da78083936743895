// Package wshistory implements history.History over a WebSocket connection.
//
// A browser (or any client) connects, sends a hello frame carrying its
// current location, and then reports every navigation it performs itself
// (back/forward, link clicks) with a pop frame. The server side History
// mirrors that location, notifies its listeners, and sends push frames when
// server code navigates.
//
// Wire format:
//
//	┌─────────────┬──────────────────────────────────────────┐
//	│ Frame Type  │ Payload                                  │
//	│ (1 byte)    │ (msgpack-encoded Message)                │
//	└─────────────┴──────────────────────────────────────────┘
//
// All frames are sent as binary WebSocket messages.
package wshistory
