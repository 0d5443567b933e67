package cachetest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/vcache/pkg/reactive"
	"github.com/vango-dev/vcache/pkg/store"
)

// Harness is a cache wired for tests.
type Harness struct {
	t testing.TB

	// Cache is the cache under test.
	Cache *store.Cache

	// Queue is the deferred scheduler bindings re-render through.
	Queue *store.Queue

	// Root is the owner the cache is provided on.
	Root *reactive.Owner
}

// Option configures a Harness.
type Option func(*harnessConfig)

type harnessConfig struct {
	immediate bool
	logger    *slog.Logger
	cacheOpts []store.Option
}

// Immediate makes bindings re-render synchronously instead of on Flush.
func Immediate() Option {
	return func(c *harnessConfig) {
		c.immediate = true
	}
}

// WithLogger routes cache logs to l. By default logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *harnessConfig) {
		c.logger = l
	}
}

// WithCacheOptions passes extra options to store.New.
func WithCacheOptions(opts ...store.Option) Option {
	return func(c *harnessConfig) {
		c.cacheOpts = append(c.cacheOpts, opts...)
	}
}

// New creates a Harness. Everything it creates is torn down when the test
// ends.
func New(t testing.TB, opts ...Option) *Harness {
	t.Helper()

	cfg := harnessConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	q := store.NewQueue()
	cacheOpts := []store.Option{store.WithLogger(cfg.logger)}
	if !cfg.immediate {
		cacheOpts = append(cacheOpts, store.WithScheduler(q))
	}
	cacheOpts = append(cacheOpts, cfg.cacheOpts...)

	h := &Harness{
		t:     t,
		Cache: store.New(cacheOpts...),
		Queue: q,
		Root:  reactive.NewOwner(nil),
	}
	store.Provide(h.Root, h.Cache)

	t.Cleanup(func() {
		h.Root.Dispose()
		store.DangerClear(h.Cache)
	})
	return h
}

// Seed stores value under key without notifying anyone.
func (h *Harness) Seed(key string, value any) {
	store.DangerSet(h.Cache, key, value)
}

// Peek reads key from the raw store.
func (h *Harness) Peek(key string) (any, bool) {
	return store.DangerGet(h.Cache, key)
}

// Reset empties the cache without notifying anyone.
func (h *Harness) Reset() {
	store.DangerClear(h.Cache)
}

// Mount mounts a consumer under the harness root.
func (h *Harness) Mount(body func(*store.Binding), opts ...store.BindOption) *store.Component {
	return store.Mount(h.Root, h.Cache, body, opts...)
}

// Flush runs queued re-renders until none are pending and returns how many
// ran.
func (h *Harness) Flush() int {
	return h.Queue.Drain(store.MaxRerenders)
}

// MustSet writes through the cache and fails the test on error.
func (h *Harness) MustSet(key string, value any, opts ...store.SetOption) {
	h.t.Helper()
	if err := h.Cache.Set(key, value, opts...); err != nil {
		h.t.Fatalf("Set(%q): %v", key, err)
	}
}

// ExpectRenders asserts comp rendered exactly n times.
func (h *Harness) ExpectRenders(comp *store.Component, n int) {
	h.t.Helper()
	if got := comp.Renders(); got != n {
		h.t.Errorf("expected %d renders, got %d", n, got)
	}
}

// ExpectValue asserts key holds exactly want (same reference).
func (h *Harness) ExpectValue(key string, want any) {
	h.t.Helper()
	got, ok := h.Cache.Get(key)
	if !ok {
		h.t.Errorf("expected key %q to be present", key)
		return
	}
	if !store.SameRef(got, want) {
		h.t.Errorf("key %q = %v, want %v", key, got, want)
	}
}

// ExpectAbsent asserts key was never written (or was cleared).
func (h *Harness) ExpectAbsent(key string) {
	h.t.Helper()
	if v, ok := h.Cache.Get(key); ok {
		h.t.Errorf("expected key %q to be absent, got %v", key, v)
	}
}
