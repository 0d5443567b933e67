package store

import (
	"fmt"
	"sync/atomic"

	"github.com/vango-dev/vcache/internal/errors"
	"github.com/vango-dev/vcache/pkg/reactive"
)

// Binding is one consumer's view of a Cache. It reads and writes the cache
// and re-renders the consumer whenever any binding-visible write happens.
//
// A Binding implements reactive.Listener. It holds no data of its own
// besides a version counter that increases with every notification.
type Binding struct {
	id        uint64
	name      string
	cache     *Cache
	render    func()
	scheduler Scheduler

	version atomic.Uint64
	closed  atomic.Bool
}

// Bind activates a binding that calls render on every notifying write.
// The binding stays active until Close. Prefer Use, which ties the binding
// to a component owner.
func (c *Cache) Bind(render func(), opts ...BindOption) *Binding {
	b := &Binding{
		id:        reactive.NextID(),
		cache:     c,
		render:    render,
		scheduler: c.scheduler,
	}
	for _, opt := range opts {
		opt(b)
	}

	c.addBinding(b)
	return b
}

// Use activates a binding owned by owner. Disposing owner closes the
// binding. If owner is already disposed the binding is returned closed.
func (c *Cache) Use(owner *reactive.Owner, render func(), opts ...BindOption) *Binding {
	b := c.Bind(render, opts...)
	owner.OnCleanup(b.Close)
	return b
}

// ID returns the binding's unique identifier.
func (b *Binding) ID() uint64 {
	return b.id
}

// Version returns how many notifications the binding has received.
func (b *Binding) Version() uint64 {
	return b.version.Load()
}

// Closed reports whether the binding has been torn down.
func (b *Binding) Closed() bool {
	return b.closed.Load()
}

// Cache returns the cache the binding reads from.
func (b *Binding) Cache() *Cache {
	return b.cache
}

// Get reads key from the cache. It works after Close.
func (b *Binding) Get(key string) (any, bool) {
	return b.cache.Get(key)
}

// Set writes through to the cache. After Close it returns ErrBindingClosed
// and does not write.
func (b *Binding) Set(key string, value any, opts ...SetOption) error {
	if b.closed.Load() {
		return errors.New("C002").WithDetail("binding %s", b.label())
	}
	return b.cache.Set(key, value, opts...)
}

// MarkDirty bumps the version and schedules a re-render.
// It does nothing once the binding is closed.
func (b *Binding) MarkDirty() {
	if b.closed.Load() {
		return
	}
	b.version.Add(1)
	b.scheduler.Schedule(b.id, b.rerender)
}

// rerender may run long after MarkDirty under a deferred scheduler; the
// consumer may be gone by then.
func (b *Binding) rerender() {
	if b.closed.Load() || b.render == nil {
		return
	}
	b.render()
}

// Close unregisters the binding. Re-renders already queued become no-ops.
// Close is idempotent.
func (b *Binding) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.cache.removeBinding(b)
}

func (b *Binding) label() string {
	if b.name != "" {
		return b.name
	}
	return fmt.Sprintf("#%d", b.id)
}
