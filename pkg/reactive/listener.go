package reactive

// Listener is anything that can be notified when a dependency changes.
type Listener interface {
	// MarkDirty notifies the listener that something it observes changed.
	// For cache bindings this schedules a re-render of the consumer.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// Cleanup is a function run when an Owner is disposed.
type Cleanup func()

// Notify marks each listener dirty. Inside a Batch the listeners are queued
// and delivered when the outermost batch completes.
func Notify(listeners ...Listener) {
	if len(listeners) == 0 {
		return
	}

	if getBatchDepth() > 0 {
		for _, l := range listeners {
			queuePendingUpdate(l)
		}
		return
	}

	for _, l := range listeners {
		l.MarkDirty()
	}
}
