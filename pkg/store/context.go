package store

import (
	"github.com/vango-dev/vcache/internal/errors"
	"github.com/vango-dev/vcache/pkg/reactive"
)

// cacheKey is the owner context key under which a Cache is provided.
var cacheKey = &struct{ name string }{"Cache"}

// Provide makes c available to owner and all its descendants.
func Provide(owner *reactive.Owner, c *Cache) {
	owner.SetValue(cacheKey, c)
}

// From returns the cache provided to owner or an ancestor, or nil.
func From(owner *reactive.Owner) *Cache {
	if owner == nil {
		return nil
	}
	c, _ := owner.GetValue(cacheKey).(*Cache)
	return c
}

// Use activates a binding on the cache provided to owner's tree.
// It returns ErrNoCache if no ancestor provides one.
func Use(owner *reactive.Owner, render func(), opts ...BindOption) (*Binding, error) {
	c := From(owner)
	if c == nil {
		return nil, errors.New("C004")
	}
	return c.Use(owner, render, opts...), nil
}

// UseCurrent is Use with the owner set by reactive.WithOwner.
func UseCurrent(render func(), opts ...BindOption) (*Binding, error) {
	owner := reactive.CurrentOwner()
	if owner == nil {
		return nil, errors.New("C004").WithDetail("no current owner")
	}
	return Use(owner, render, opts...)
}
