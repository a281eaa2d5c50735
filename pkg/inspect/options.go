package inspect

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/vstore/pkg/equality"
)

// DefaultWriteTimeout bounds a single websocket write.
const DefaultWriteTimeout = 10 * time.Second

type options struct {
	logger       *slog.Logger
	gatherer     prometheus.Gatherer
	policy       equality.Policy
	allowOrigins []string
	dispatch     func(json.RawMessage) error
	writeTimeout time.Duration
}

// Option configures a Server.
type Option func(*options)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithGatherer exposes the gatherer's metrics at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(o *options) {
		o.gatherer = g
	}
}

// WithPolicy sets the equality policy used by watchers that do not pass one.
func WithPolicy(p equality.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithAllowedOrigins sets the origins allowed to open /watch. "*" allows any
// origin. With no origins only same-origin requests are accepted.
func WithAllowedOrigins(origins ...string) Option {
	return func(o *options) {
		o.allowOrigins = append([]string(nil), origins...)
	}
}

// WithDispatch enables POST /dispatch. fn receives the raw request body.
func WithDispatch(fn func(json.RawMessage) error) Option {
	return func(o *options) {
		o.dispatch = fn
	}
}

// WithWriteTimeout sets the websocket write deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.writeTimeout = d
		}
	}
}
