// Package history defines the navigation collaborator that owns the current
// location, announces location changes and performs pushes.
//
// Two implementations live here:
//
//   - Static has a fixed location. Listen logs a warning and returns an inert
//     Unlisten; Push always fails with ErrPushNotAllowed. It stands in when no
//     navigable environment exists (server rendering, CLI tools, tests).
//   - Memory is a live in-process history with a stack of entries. Push,
//     Replace and Go navigate and notify every listener synchronously.
//
// The websocket-backed history for real browser tabs lives in package
// wshistory.
package history
