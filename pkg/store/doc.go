// Package store provides an observable keyed cache shared by independent
// components.
//
// A Cache maps string keys to opaque values. Components activate a Binding
// to read and write the cache; any write that replaces a value with a
// different reference re-renders every active binding. Passing SkipUpdate
// persists the write without re-rendering anyone.
//
// Usage:
//
//	c := store.New()
//	root := reactive.NewOwner(nil)
//	store.Provide(root, c)
//
//	owner := reactive.NewOwner(root)
//	b, _ := store.Use(owner, func() { rerender() })
//
//	b.Set("filters", &Filters{Status: "open"})          // re-renders consumers
//	b.Set("scroll", pos, store.SkipUpdate())            // stored, nobody re-renders
//	f, _ := b.Get("filters")
//
//	owner.Dispose() // the binding is gone; late triggers are no-ops
//
// # Change detection
//
// A write notifies only if the new value is not the same reference as the
// old one (see SameRef). Pointers, maps, slices and channels compare by
// identity, not contents: mutating a struct in place and storing the same
// pointer again does not notify. Value types compare with ==, so callers
// who want identity semantics for values wrap them in a pointer.
//
// # Notification
//
// Bindings are not keyed. A notifying write to any key re-renders every
// active binding. This keeps bindings trivial at the cost of extra renders
// for unrelated keys, which is fine for low-traffic admin state and wrong
// for high-frequency data.
//
// Re-renders go through a Scheduler. Immediate runs them synchronously
// inside Set; Queue defers them until Flush, deduplicated per binding.
// Inside reactive.Batch notifications are deferred until the batch ends.
package store
