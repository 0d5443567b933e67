// Package reactive provides the component lifecycle and batching primitives
// the cache binds consumers to.
//
// An Owner represents a component scope. Owners form a tree mirroring the
// component tree; disposing an Owner disposes its children and runs its
// cleanups. Consumers of the cache register their bindings on an Owner so
// that tearing the component down also tears the binding down.
//
// # Listeners
//
// A Listener is anything that can be told one of its inputs changed:
//
//	type Listener interface {
//	    MarkDirty()
//	    ID() uint64
//	}
//
// # Batching
//
// Multiple notifications can be grouped so each listener hears about them
// once:
//
//	Batch(func() {
//	    c.Set("user", u)
//	    c.Set("profile", p)
//	})  // every listener is marked dirty once, after both writes
//
// Batches nest. Queued listeners are delivered when the outermost batch
// completes.
//
// # Thread Safety
//
// Owners are safe for concurrent use. Batch depth is tracked per goroutine,
// so a goroutine spawned inside a Batch does not inherit it.
package reactive
