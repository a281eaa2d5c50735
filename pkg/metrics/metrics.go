// Package metrics exposes Prometheus instruments for vstore stores.
//
// A single Collector can be shared by many stores; every series carries a
// "store" label with the store's name. All recording methods are safe to call
// on a nil *Collector, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the Prometheus collector.
type Config struct {
	// Namespace is the metrics namespace (default: "vstore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for notification pass duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus collector.
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

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
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
		Namespace: "vstore",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the store instruments.
type Collector struct {
	mutations     *prometheus.CounterVec
	queued        *prometheus.CounterVec
	notifications *prometheus.CounterVec
	skipped       *prometheus.CounterVec
	observers     *prometheus.GaugeVec
	passDuration  *prometheus.HistogramVec
	configErrors  *prometheus.CounterVec
}

// New registers the store instruments and returns the collector.
//
// Metrics collected:
//   - vstore_mutations_total: applied mutations by store and op (set, update, dispatch)
//   - vstore_queued_mutations_total: mutations deferred because a pass was running
//   - vstore_notifications_total: observer notify calls
//   - vstore_skipped_notifications_total: observers whose projection was unchanged
//   - vstore_observers: currently attached observers
//   - vstore_notification_pass_duration_seconds: time spent per pass
//   - vstore_config_errors_total: reported configuration errors by code
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutations_total",
			Help:        "Total number of applied store mutations",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "op"}),

		queued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "queued_mutations_total",
			Help:        "Total number of mutations deferred until the running notification pass finished",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of observer notifications",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "skipped_notifications_total",
			Help:        "Total number of observers skipped because their projection was unchanged",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		observers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "observers",
			Help:        "Number of attached observers",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notification_pass_duration_seconds",
			Help:        "Notification pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"store"}),

		configErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "config_errors_total",
			Help:        "Total number of reported store configuration errors",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "code"}),
	}
}

// RecordMutation records an applied mutation.
func (c *Collector) RecordMutation(store, op string) {
	if c == nil {
		return
	}
	c.mutations.WithLabelValues(store, op).Inc()
}

// RecordQueued records a mutation deferred behind a running pass.
func (c *Collector) RecordQueued(store string) {
	if c == nil {
		return
	}
	c.queued.WithLabelValues(store).Inc()
}

// RecordPass records the outcome of one notification pass.
func (c *Collector) RecordPass(store string, notified, skipped int, d time.Duration) {
	if c == nil {
		return
	}
	c.notifications.WithLabelValues(store).Add(float64(notified))
	c.skipped.WithLabelValues(store).Add(float64(skipped))
	c.passDuration.WithLabelValues(store).Observe(d.Seconds())
}

// SetObservers records the number of attached observers.
func (c *Collector) SetObservers(store string, n int) {
	if c == nil {
		return
	}
	c.observers.WithLabelValues(store).Set(float64(n))
}

// RecordConfigError records a reported configuration error.
func (c *Collector) RecordConfigError(store, code string) {
	if c == nil {
		return
	}
	c.configErrors.WithLabelValues(store, code).Inc()
}
