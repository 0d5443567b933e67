package store

import (
	"log/slog"
	"sync"

	"github.com/vango-dev/vcache/internal/errors"
	"github.com/vango-dev/vcache/internal/kv"
	"github.com/vango-dev/vcache/pkg/reactive"
)

// Cache is an observable key-value store.
//
// Construct one per application (or per test) and hand it to consumers
// through Provide or directly. A Cache is safe for concurrent use.
type Cache struct {
	data *kv.Map

	scheduler Scheduler
	logger    *slog.Logger

	mu        sync.RWMutex
	bindings  map[uint64]*Binding
	observers []observerEntry
}

type observerEntry struct {
	id  uint64
	obs Observer
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	cfg := config{
		scheduler: Immediate,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Cache{
		data:      kv.New(),
		scheduler: cfg.scheduler,
		logger:    cfg.logger,
		bindings:  make(map[uint64]*Binding),
	}
	for _, o := range cfg.observers {
		c.observers = append(c.observers, observerEntry{id: reactive.NextID(), obs: o})
	}
	return c
}

// Get returns the value stored under key and whether it was present.
// A key that was never written returns (nil, false).
func (c *Cache) Get(key string) (any, bool) {
	return c.data.Get(key)
}

// Set stores value under key. If value is not the same reference as the
// previous value (see SameRef) and SkipUpdate was not passed, every active
// binding is notified. The store is updated in every case, including when
// the reference is unchanged.
//
// Set returns ErrEmptyKey for an empty key and leaves the store untouched.
func (c *Cache) Set(key string, value any, opts ...SetOption) error {
	if key == "" {
		c.logger.Warn("cache set rejected", "error", "empty key")
		return errors.New("C001").WithDetail("Set called with an empty key")
	}

	o := applySetOptions(opts)

	prev, _ := c.data.Swap(key, value)
	ch := Change{
		Key:        key,
		Changed:    !SameRef(prev, value),
		Suppressed: o.skipUpdate,
	}

	if ch.Changed && !ch.Suppressed {
		ch.Notified = c.notify(key)
	} else if ch.Changed {
		c.logger.Debug("cache notify suppressed", "key", key)
	}

	for _, e := range c.observerList() {
		e.obs.OnSet(ch)
	}
	return nil
}

// notify marks every active binding dirty and returns how many there were.
// It runs after the write, so re-rendering consumers see the new value.
func (c *Cache) notify(key string) int {
	c.mu.RLock()
	listeners := make([]reactive.Listener, 0, len(c.bindings))
	for _, b := range c.bindings {
		listeners = append(listeners, b)
	}
	c.mu.RUnlock()

	if len(listeners) > 0 {
		c.logger.Debug("cache notify", "key", key, "bindings", len(listeners))
	}
	reactive.Notify(listeners...)
	return len(listeners)
}

// Has reports whether key is present.
func (c *Cache) Has(key string) bool {
	_, ok := c.data.Get(key)
	return ok
}

// Keys returns all present keys in sorted order.
func (c *Cache) Keys() []string {
	return c.data.Keys()
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	return c.data.Len()
}

// Range calls fn for each entry in key order until fn returns false.
func (c *Cache) Range(fn func(key string, value any) bool) {
	c.data.Range(fn)
}

// BindingCount returns the number of active bindings.
func (c *Cache) BindingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bindings)
}

// Observe registers o for every subsequent write and returns a function
// that removes it.
func (c *Cache) Observe(o Observer) (remove func()) {
	id := reactive.NextID()
	c.mu.Lock()
	c.observers = append(c.observers, observerEntry{id: id, obs: o})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, e := range c.observers {
				if e.id == id {
					c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Cache) observerList() []observerEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.observers
}

func (c *Cache) addBinding(b *Binding) {
	c.mu.Lock()
	c.bindings[b.id] = b
	n := len(c.bindings)
	c.mu.Unlock()

	c.logger.Debug("cache binding activated", "binding", b.label(), "active", n)
}

func (c *Cache) removeBinding(b *Binding) {
	c.mu.Lock()
	delete(c.bindings, b.id)
	n := len(c.bindings)
	c.mu.Unlock()

	c.logger.Debug("cache binding closed", "binding", b.label(), "active", n)
}
