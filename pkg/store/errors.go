package store

import "github.com/vango-dev/vcache/internal/errors"

// Sentinel errors. Returned errors carry extra detail but match these
// under errors.Is.
var (
	// ErrEmptyKey is returned by Set when the key is the empty string.
	ErrEmptyKey = errors.New("C001")

	// ErrBindingClosed is returned by Binding.Set after teardown.
	ErrBindingClosed = errors.New("C002")

	// ErrTypeMismatch is returned by Key.Lookup when the stored value has
	// another type.
	ErrTypeMismatch = errors.New("C003")

	// ErrNoCache is returned by Use when no ancestor owner provides a cache.
	ErrNoCache = errors.New("C004")
)
