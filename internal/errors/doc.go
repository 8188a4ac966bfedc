// Package errors provides structured, coded errors for vbind.
//
// Every error the engine can report has a unique code (e.g. "E101") that maps
// to a category, a short message and a longer explanation. Codes make failures
// easy to grep for in logs and let callers branch with errors.Is without
// matching message text:
//
//	err := errors.New(errors.CodePathNotFound).WithDetail(`"user.name"`)
//	if stderrors.Is(err, errors.New(errors.CodePathNotFound)) {
//	    // missing model field
//	}
//
// # Categories
//
//   - expression: path resolution, parsing and filter failures
//   - lifecycle: component state machine and structure errors
//   - usage: API misuse that is logged and ignored
//   - config: project configuration and CLI errors
//
// The engine never lets these errors escape a render pass or an event
// dispatch; they are logged and the failing expression renders as empty.
package errors
