package store

import (
	"log/slog"
)

// Option configures a Cache.
type Option func(*config)

type config struct {
	scheduler Scheduler
	logger    *slog.Logger
	observers []Observer
}

// WithScheduler sets the scheduler used to deliver re-renders.
// Default: Immediate.
func WithScheduler(s Scheduler) Option {
	return func(c *config) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers an observer for every write.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// SetOption configures a single Set call.
type SetOption func(*setOptions)

type setOptions struct {
	skipUpdate bool
}

// SkipUpdate persists the write without notifying any binding.
// Consumers see the new value the next time they re-render for another
// reason.
func SkipUpdate() SetOption {
	return func(o *setOptions) {
		o.skipUpdate = true
	}
}

// SkipUpdateIf is SkipUpdate when skip is true and a no-op otherwise.
func SkipUpdateIf(skip bool) SetOption {
	return func(o *setOptions) {
		o.skipUpdate = o.skipUpdate || skip
	}
}

func applySetOptions(opts []SetOption) setOptions {
	var o setOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// BindOption configures a Binding.
type BindOption func(*Binding)

// OnScheduler makes the binding deliver its re-renders through s instead of
// the cache's scheduler.
func OnScheduler(s Scheduler) BindOption {
	return func(b *Binding) {
		if s != nil {
			b.scheduler = s
		}
	}
}

// Named labels the binding in logs.
func Named(name string) BindOption {
	return func(b *Binding) {
		b.name = name
	}
}
