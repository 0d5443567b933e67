package reactive

import "log/slog"

// DebugMode enables transaction boundary logging in TxNamed.
// This should be set at startup and not changed during runtime.
var DebugMode bool

// Batch groups notifications into a single delivery phase.
// Listeners notified within fn are collected, deduplicated by ID, and marked
// dirty once when the outermost batch completes.
//
// Example:
//
//	Batch(func() {
//	    c.Set("first", first)
//	    c.Set("last", last)
//	})
//	// Each bound consumer re-renders once
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if decrementBatchDepth() {
			processPendingUpdates()
		}
	}()

	fn()
}

// InBatch reports whether the calling goroutine is inside a Batch.
func InBatch() bool {
	return getBatchDepth() > 0
}

// processPendingUpdates deduplicates and notifies all pending listeners.
func processPendingUpdates() {
	updates := drainPendingUpdates()
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	unique := make([]Listener, 0, len(updates))

	for _, listener := range updates {
		id := listener.ID()
		if !seen[id] {
			seen[id] = true
			unique = append(unique, listener)
		}
	}

	for _, listener := range unique {
		listener.MarkDirty()
	}
}

// Tx runs fn as a transaction. It is an alias for Batch.
func Tx(fn func()) {
	Batch(fn)
}

// TxNamed runs fn as a named transaction. In DebugMode the transaction
// boundaries are logged at debug level.
//
// Example:
//
//	TxNamed("restore-snapshot", func() {
//	    for _, e := range entries {
//	        c.Set(e.Key, e.Value)
//	    }
//	})
func TxNamed(name string, fn func()) {
	if DebugMode {
		slog.Debug("tx start", "tx", name)
		defer slog.Debug("tx end", "tx", name)
	}
	Batch(fn)
}
