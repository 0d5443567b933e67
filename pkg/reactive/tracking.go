package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for a goroutine.
type trackingContext struct {
	// owners is the WithOwner stack; the last entry is the current owner.
	owners []*Owner

	// batchDepth tracks nested Batch() calls.
	// When > 0, notifications are queued instead of delivered.
	batchDepth int

	// pendingUpdates accumulates listeners to notify when the batch completes.
	pendingUpdates []Listener
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// getGoroutineID returns a unique identifier for the current goroutine,
// parsed from the header of runtime.Stack ("goroutine <id> [...").
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

func getTrackingContext() *trackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// releaseTrackingContext drops the goroutine's context once it holds no state.
func releaseTrackingContext(ctx *trackingContext) {
	if len(ctx.owners) == 0 && ctx.batchDepth == 0 && len(ctx.pendingUpdates) == 0 {
		trackingContexts.Delete(getGoroutineID())
	}
}

func getBatchDepth() int {
	if ctx, ok := trackingContexts.Load(getGoroutineID()); ok {
		return ctx.(*trackingContext).batchDepth
	}
	return 0
}

func incrementBatchDepth() {
	getTrackingContext().batchDepth++
}

// decrementBatchDepth returns true if the outermost batch just completed.
func decrementBatchDepth() bool {
	ctx := getTrackingContext()
	ctx.batchDepth--
	return ctx.batchDepth == 0
}

func queuePendingUpdate(l Listener) {
	ctx := getTrackingContext()
	ctx.pendingUpdates = append(ctx.pendingUpdates, l)
}

func drainPendingUpdates() []Listener {
	ctx := getTrackingContext()
	updates := ctx.pendingUpdates
	ctx.pendingUpdates = nil
	releaseTrackingContext(ctx)
	return updates
}

// CurrentOwner returns the Owner set by the innermost WithOwner on this
// goroutine, or nil.
func CurrentOwner() *Owner {
	if ctx, ok := trackingContexts.Load(getGoroutineID()); ok {
		owners := ctx.(*trackingContext).owners
		if len(owners) > 0 {
			return owners[len(owners)-1]
		}
	}
	return nil
}

// Active reports whether owner is set by any WithOwner call still running
// on this goroutine, not only the innermost one.
func Active(owner *Owner) bool {
	if owner == nil {
		return false
	}
	if ctx, ok := trackingContexts.Load(getGoroutineID()); ok {
		for _, o := range ctx.(*trackingContext).owners {
			if o == owner {
				return true
			}
		}
	}
	return false
}

// WithOwner runs fn with owner as the current owner for this goroutine.
//
// Example:
//
//	reactive.WithOwner(componentOwner, func() {
//	    b := store.UseCurrent(render) // bound to componentOwner
//	})
func WithOwner(owner *Owner, fn func()) {
	ctx := getTrackingContext()
	ctx.owners = append(ctx.owners, owner)
	defer func() {
		ctx.owners[len(ctx.owners)-1] = nil
		ctx.owners = ctx.owners[:len(ctx.owners)-1]
		releaseTrackingContext(ctx)
	}()
	fn()
}

// SetContext sets a context value on the current owner.
// It is a no-op outside WithOwner.
func SetContext(key, value any) {
	if owner := CurrentOwner(); owner != nil {
		owner.SetValue(key, value)
	}
}

// GetContext retrieves a context value from the current owner's chain.
// Returns nil outside WithOwner or when no owner in the chain has the key.
func GetContext(key any) any {
	if owner := CurrentOwner(); owner != nil {
		return owner.GetValue(key)
	}
	return nil
}
