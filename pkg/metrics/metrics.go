// Package metrics exports cache activity as Prometheus metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/vcache/pkg/store"
)

// Config configures the Prometheus collector.
type Config struct {
	// Namespace is the metrics namespace (default: "vcache").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vcache",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Result label values for sets_total.
const (
	ResultNotified   = "notified"
	ResultSuppressed = "suppressed"
	ResultUnchanged  = "unchanged"
)

// Collector observes a cache and records:
//   - vcache_sets_total{result}: writes by outcome (notified, suppressed, unchanged)
//   - vcache_notifications_total: bindings marked dirty
//   - vcache_bindings_active: active bindings
//   - vcache_keys: entries in the cache
type Collector struct {
	sets          *prometheus.CounterVec
	notifications prometheus.Counter
}

// Register creates the metrics for c and starts observing it.
// It returns the collector and a function that stops observing and
// removes the metrics from the registry, after which Register may be
// called again on the same registry.
func Register(c *store.Cache, opts ...Option) (*Collector, func()) {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	col := &Collector{
		sets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sets_total",
			Help:        "Total number of cache writes by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		notifications: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of bindings marked dirty by cache writes",
			ConstLabels: config.ConstLabels,
		}),
	}

	bindings := factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "bindings_active",
		Help:        "Number of active cache bindings",
		ConstLabels: config.ConstLabels,
	}, func() float64 { return float64(c.BindingCount()) })

	keys := factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "keys",
		Help:        "Number of entries in the cache",
		ConstLabels: config.ConstLabels,
	}, func() float64 { return float64(c.Len()) })

	// Pre-create label values so they export as zero.
	for _, r := range []string{ResultNotified, ResultSuppressed, ResultUnchanged} {
		col.sets.WithLabelValues(r)
	}

	detach := c.Observe(col)
	var once sync.Once
	return col, func() {
		once.Do(func() {
			detach()
			if config.Registry == nil {
				return
			}
			for _, m := range []prometheus.Collector{col.sets, col.notifications, bindings, keys} {
				config.Registry.Unregister(m)
			}
		})
	}
}

// OnSet implements store.Observer.
func (col *Collector) OnSet(ch store.Change) {
	switch {
	case !ch.Changed:
		col.sets.WithLabelValues(ResultUnchanged).Inc()
	case ch.Suppressed:
		col.sets.WithLabelValues(ResultSuppressed).Inc()
	default:
		col.sets.WithLabelValues(ResultNotified).Inc()
		col.notifications.Add(float64(ch.Notified))
	}
}
