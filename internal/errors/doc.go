// Package errors provides structured, coded errors for querystate.
//
// Every error the library returns to a caller carries a short code
// (e.g. "Q001") registered with a message, a category and a longer
// explanation. Public packages expose sentinel errors and wrap them, so
// callers can test with the standard errors.Is:
//
//	err := h.Push("/x", nil)
//	if errors.Is(err, history.ErrPushNotAllowed) {
//	    ...
//	}
//
// # Error Categories
//
//   - history: navigation collaborators (push, listen)
//   - config: configuration loading and validation
//   - provider: provider lifecycle
//   - transport: the websocket history
//   - cli: command line usage
//
// # Usage
//
//	err := errors.New("Q101").
//	    WithDetail("looked in " + dir).
//	    WithSuggestion("create querystate.json or pass --config")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR Q101: Configuration file not found
//	//
//	//   looked in ./app
//	//
//	//   Hint: create querystate.json or pass --config
package errors
