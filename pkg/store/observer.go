package store

// Change describes one call to Cache.Set.
type Change struct {
	// Key is the key written.
	Key string

	// Changed is true when the new value is a different reference.
	Changed bool

	// Suppressed is true when SkipUpdate was passed.
	Suppressed bool

	// Notified is the number of bindings notified (0 unless Changed and
	// not Suppressed).
	Notified int
}

// Observer is told about every successful write, after the store is
// updated and after bindings were notified.
type Observer interface {
	OnSet(Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Change)

// OnSet calls f(ch).
func (f ObserverFunc) OnSet(ch Change) {
	f(ch)
}
