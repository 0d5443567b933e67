// Package cachetest provides test helpers for code that consumes a
// store.Cache.
//
// A Harness owns a fresh cache with a deferred render queue, a root owner
// the cache is provided on, and helpers to mount consumers and assert on
// what they rendered:
//
//	h := cachetest.New(t)
//	h.Seed("foo", &Foo{A: 1})
//
//	var shown string
//	comp := h.Mount(func(b *store.Binding) {
//	    v, _ := b.Get("foo")
//	    shown = fmt.Sprint(v)
//	})
//
//	h.Cache.Set("foo", &Foo{A: 2})
//	h.Flush()
//	h.ExpectRenders(comp, 2)
//
// Seed writes through the store's escape hatches, so it never triggers a
// render. The harness disposes everything in t.Cleanup.
package cachetest
