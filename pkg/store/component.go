package store

import (
	"sync/atomic"

	"github.com/vango-dev/vcache/pkg/reactive"
)

// Component is a consumer with its own owner scope and binding. Its body
// runs once on Mount and again on every re-render the binding delivers.
//
//	comp := store.Mount(root, c, func(b *store.Binding) {
//	    v, _ := b.Get("foo")
//	    view = fmt.Sprint(v)
//	})
//	defer comp.Unmount()
type Component struct {
	owner   *reactive.Owner
	binding *Binding
	body    func(*Binding)

	renders atomic.Int64

	// rendering is held while the body runs. A Render that arrives
	// meanwhile (the body wrote to the cache, or another goroutine did)
	// leaves rerun set instead of running the body concurrently with
	// itself.
	rendering atomic.Bool
	rerun     atomic.Bool

	// external is set by Render calls made outside the body.
	external atomic.Bool
}

// MaxRerenders bounds how many times in a row the body re-runs because of
// its own writes. A body that always writes a fresh reference would
// otherwise render forever. Writes from outside the body reset the count.
const MaxRerenders = 64

// Mount creates a child owner of parent, binds it to c and renders once.
// A nil parent mounts a root component.
func Mount(parent *reactive.Owner, c *Cache, body func(*Binding), opts ...BindOption) *Component {
	comp := &Component{
		owner: reactive.NewOwner(parent),
		body:  body,
	}
	comp.binding = c.Use(comp.owner, comp.Render, opts...)
	comp.Render()
	return comp
}

// Render runs the body. It does nothing after Unmount.
//
// Render is safe to call from any goroutine and from inside the body. A
// call that finds the body already running leaves a rerun request and
// returns; the running call picks the request up before it returns, or
// right after it releases the component.
func (comp *Component) Render() {
	if comp.binding == nil {
		return
	}
	if !reactive.Active(comp.owner) {
		comp.external.Store(true)
	}
	comp.rerun.Store(true)

	runs := 0
	for {
		if comp.owner.IsDisposed() || !comp.rendering.CompareAndSwap(false, true) {
			return
		}

		for !comp.owner.IsDisposed() && comp.rerun.Load() {
			// Only writes the body makes to its own cache count toward
			// the storm limit.
			if comp.external.Swap(false) {
				runs = 0
			}
			if runs >= MaxRerenders {
				break
			}
			comp.rerun.Store(false)
			runs++
			comp.renders.Add(1)
			reactive.WithOwner(comp.owner, func() {
				comp.body(comp.binding)
			})
		}

		if afterRenderPass != nil {
			afterRenderPass()
		}
		comp.rendering.Store(false)

		// A request stored after the last check but before the release
		// failed its CompareAndSwap; it is ours to run.
		if !comp.rerun.Load() {
			return
		}
		if runs >= MaxRerenders && !comp.external.Load() {
			comp.binding.cache.logger.Warn("component render storm",
				"binding", comp.binding.label(),
				"renders", runs)
			return
		}
	}
}

// afterRenderPass runs between the last body run and the release of the
// component. Tests use it to land a write in that window.
var afterRenderPass func()

// Renders returns how many times the body ran.
func (comp *Component) Renders() int {
	return int(comp.renders.Load())
}

// Owner returns the component's owner scope.
func (comp *Component) Owner() *reactive.Owner {
	return comp.owner
}

// Binding returns the component's binding.
func (comp *Component) Binding() *Binding {
	return comp.binding
}

// Unmount disposes the component's owner, closing its binding.
func (comp *Component) Unmount() {
	comp.owner.Dispose()
}
