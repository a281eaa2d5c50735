// Package errors provides coded, actionable errors for vstore.
//
// Every error carries a short code (e.g. "S001") that maps to a registered
// template with a message, a longer explanation and a documentation link.
// Errors can be wrapped, annotated with a suggestion, and rendered for a
// terminal or handed to slog as a group.
//
// # Error Categories
//
//   - config: setup mistakes (dispatch without a reducer, bad config files)
//   - runtime: failures while a store is running (a panic inside a pass)
//   - cli: command-line and inspector failures
//
// # Usage
//
//	err := errors.New("S001").
//	    WithDetail("store \"cart\" was created with store.New").
//	    WithSuggestion("Create the store with store.NewReducer")
//
//	logger.Error("dispatch ignored", "error", err)
//	fmt.Print(err.Format())
package errors
