package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/metrics"
)

const tracerName = "github.com/vango-dev/vstore/pkg/store"

var idCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

// Operation names used in logs, metrics and spans.
const (
	opSet      = "set"
	opUpdate   = "update"
	opDispatch = "dispatch"
)

// mutation is one queued replacement of the store value.
type mutation[T any] struct {
	op    string
	apply func(T) T
}

// Store is a value container with change-detected observers.
// The zero value is not usable; create stores with New, Empty or NewReducer.
type Store[T any] struct {
	name string

	// mu protects value, version, observers, pending and draining.
	mu sync.RWMutex

	value     T
	version   uint64
	observers []*observer[T]

	// reduce applies an action; nil when the store has no reducer.
	reduce  func(T, any) T
	accepts func(any) bool

	// pending holds mutations waiting for the running pass to finish.
	pending  *queue.Queue
	draining bool

	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
}

// New creates a store holding initial. Dispatch is unavailable.
func New[T any](initial T, opts ...Option) *Store[T] {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = fmt.Sprintf("store-%d", nextID())
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(tracerName)
	}

	return &Store[T]{
		name:    cfg.name,
		value:   initial,
		pending: queue.New(),
		logger:  cfg.logger.With("component", "store", "store", cfg.name),
		metrics: cfg.metrics,
		tracer:  cfg.tracer,
	}
}

// Empty creates a store holding the zero value of T.
func Empty[T any](opts ...Option) *Store[T] {
	var zero T
	return New(zero, opts...)
}

// Name returns the store name.
func (s *Store[T]) Name() string {
	return s.name
}

// Get returns the current value. It never blocks on a running pass.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// snapshot returns the value with the number of mutations applied so far.
func (s *Store[T]) snapshot() (T, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.version
}

// Set replaces the value and notifies observers whose projection changed.
func (s *Store[T]) Set(next T) {
	s.apply(mutation[T]{op: opSet, apply: func(T) T { return next }})
}

// Update replaces the value with fn(current) and notifies observers whose
// projection changed.
func (s *Store[T]) Update(fn func(T) T) {
	s.apply(mutation[T]{op: opUpdate, apply: fn})
}

// Dispatch replaces the value with reducer(current, action).
// On a store without a reducer, or with an action the reducer does not
// accept, Dispatch logs a configuration error and does nothing.
func (s *Store[T]) Dispatch(action any) {
	reduce := s.reduce
	if reduce == nil {
		s.configError(errors.New("S001").
			WithDetail(fmt.Sprintf("store %q was created without a reducer; action %T ignored", s.name, action)).
			WithSuggestion("Create the store with store.NewReducer to enable Dispatch"))
		return
	}
	if !s.accepts(action) {
		s.configError(errors.New("S002").
			WithDetail(fmt.Sprintf("store %q: action of type %T ignored", s.name, action)))
		return
	}

	s.apply(mutation[T]{op: opDispatch, apply: func(current T) T {
		return reduce(current, action)
	}})
}

// configError reports a configuration error through the diagnostic channel.
func (s *Store[T]) configError(err *errors.StoreError) {
	s.metrics.RecordConfigError(s.name, err.Code)
	s.logger.Error(err.Message, "error", err)
}

// apply queues m and, unless a pass is already running, drains the queue.
func (s *Store[T]) apply(m mutation[T]) {
	s.mu.Lock()
	s.pending.Add(m)
	if s.draining {
		s.mu.Unlock()
		s.metrics.RecordQueued(s.name)
		return
	}
	s.draining = true
	s.mu.Unlock()

	s.drain()
}

// drain applies queued mutations in order, each followed by a notification
// pass. A panic abandons the pass, discards the queue and propagates.
func (s *Store[T]) drain() {
	clean := false
	defer func() {
		if clean {
			return
		}
		s.mu.Lock()
		discarded := s.pending.Length()
		s.pending = queue.New()
		s.draining = false
		s.mu.Unlock()
		s.logger.Error("notification pass aborted", "error", errors.New("S003"), "discarded", discarded)
	}()

	for {
		s.mu.Lock()
		if s.pending.Length() == 0 {
			s.draining = false
			s.mu.Unlock()
			clean = true
			return
		}
		m := s.pending.Remove().(mutation[T])
		current := s.value
		s.mu.Unlock()

		next := m.apply(current)

		s.mu.Lock()
		s.value = next
		s.version++
		observers := make([]*observer[T], len(s.observers))
		copy(observers, s.observers)
		s.mu.Unlock()

		s.metrics.RecordMutation(s.name, m.op)
		s.notify(m.op, next, observers)
	}
}

// notify runs one notification pass over a snapshot of the registry.
func (s *Store[T]) notify(op string, value T, observers []*observer[T]) {
	_, span := s.tracer.Start(context.Background(), "vstore.notify",
		trace.WithAttributes(
			attribute.String("vstore.store", s.name),
			attribute.String("vstore.op", op),
			attribute.Int("vstore.observers", len(observers)),
		),
	)
	start := time.Now()
	notified, skipped := 0, 0
	finished := false
	defer func() {
		if !finished {
			span.SetStatus(codes.Error, "panic during notification pass")
		}
		span.End()
	}()

	for _, o := range observers {
		// Detached after the snapshot was taken.
		if !o.live.Load() {
			continue
		}
		if o.check(value) {
			notified++
		} else {
			skipped++
		}
	}
	finished = true

	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int("vstore.notified", notified))
	s.metrics.RecordPass(s.name, notified, skipped, elapsed)
	s.logger.Debug("notification pass",
		"op", op,
		"observers", len(observers),
		"notified", notified,
		"skipped", skipped,
		"duration", elapsed,
	)
}
