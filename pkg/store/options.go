package store

import (
	"log/slog"

	"github.com/vango-dev/vstore/pkg/equality"
	"github.com/vango-dev/vstore/pkg/metrics"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a store.
type Option func(*config)

type config struct {
	name    string
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
}

// WithName sets the store name used in logs, metrics and spans.
// The default is "store-<n>".
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the logger that receives configuration errors and pass
// summaries. If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics records mutations and notification passes on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *config) {
		c.metrics = collector
	}
}

// WithTracer sets the tracer used for notification pass spans.
// The default is the global OpenTelemetry tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) {
		c.tracer = tracer
	}
}

// BindOption configures a binding.
type BindOption func(*bindConfig)

type bindConfig struct {
	changed equality.Func
}

// WithPolicy selects the equality policy for the binding (default Shallow).
func WithPolicy(p equality.Policy) BindOption {
	return func(c *bindConfig) {
		c.changed = p.Func()
	}
}

// WithEquality sets a custom change detector for the binding.
func WithEquality(changed equality.Func) BindOption {
	return func(c *bindConfig) {
		c.changed = changed
	}
}
