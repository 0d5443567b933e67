// Package errors provides structured, coded errors for vcache.
//
// Every error the cache, snapshot and config layers return carries a stable
// code (e.g. "C001") registered with a category, a short message and a
// longer explanation. Errors with the same code match under errors.Is, so
// packages export a template value as a sentinel and return decorated
// copies:
//
//	var ErrEmptyKey = errors.New("C001")
//
//	return errors.New("C001").WithDetail("Set called with an empty key")
//
//	if stderrors.Is(err, store.ErrEmptyKey) { ... }
//
// # Categories
//
//   - cache: misuse of the cache API (empty keys, closed bindings, types)
//   - snapshot: capture, encoding and backend failures
//   - config: invalid or unreadable configuration
//   - transport: devtools HTTP and WebSocket failures
//
// Format renders an error for terminal display with an optional hint line.
package errors
