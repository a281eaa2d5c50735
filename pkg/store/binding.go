package store

import (
	"sync"

	"github.com/vango-dev/vstore/pkg/equality"
)

// Binding connects one consumer to a store. It derives a projection of type P
// from the store value and, while attached, is notified when that projection
// changes.
//
// A binding owns a single observer slot: Attach on an attached binding and
// Detach on a detached one do nothing.
type Binding[T, P any] struct {
	store   *Store[T]
	notify  func(next func() P)
	changed equality.Func

	mu       sync.Mutex
	project  func(T) P
	rendered P
	version  uint64 // store version rendered was derived from
	obs      *observer[T]
}

// Bind creates a detached binding and computes its initial projection,
// available through Value. project must not be nil.
//
// notify is called during a notification pass with a thunk returning the new
// projection. It runs without any store lock held.
func Bind[T, P any](s *Store[T], project func(T) P, notify func(next func() P), opts ...BindOption) *Binding[T, P] {
	cfg := bindConfig{changed: equality.ShallowChanged}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &Binding[T, P]{
		store:   s,
		notify:  notify,
		changed: cfg.changed,
		project: project,
	}
	b.Render()
	return b
}

// Observe creates a detached binding to the whole store value.
func (s *Store[T]) Observe(notify func(next func() T), opts ...BindOption) *Binding[T, T] {
	return Bind(s, identity[T], notify, opts...)
}

func identity[T any](v T) T { return v }

// Render recomputes the projection from the live store value and returns it.
// The result becomes the last-seen projection of the next Attach.
func (b *Binding[T, P]) Render() P {
	b.mu.Lock()
	project := b.project
	b.mu.Unlock()

	value, version := b.store.snapshot()
	p := project(value)

	b.mu.Lock()
	b.rendered = p
	b.version = version
	b.mu.Unlock()
	return p
}

// Value returns the projection computed by the last Render.
func (b *Binding[T, P]) Value() P {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rendered
}

// Live reports whether the binding is attached.
func (b *Binding[T, P]) Live() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.obs != nil
}

// Attach registers the binding with its store. The last rendered projection
// is captured as the value later passes compare against. If the store changed
// between the last Render and Attach, notify is called before Attach returns.
//
// Passes evaluate the binding's current projector, so a projector swapped by
// a later render takes effect without re-attaching.
func (b *Binding[T, P]) Attach() {
	b.mu.Lock()
	if b.obs != nil {
		b.mu.Unlock()
		return
	}
	last := b.rendered
	version := b.version
	obs := &observer[T]{id: nextID()}
	obs.check = func(value T) bool {
		next := b.projector()(value)
		if !b.changed(last, next) {
			return false
		}
		// Detached while the projector ran.
		if !obs.live.Load() {
			return false
		}
		b.notify(func() P { return next })
		return true
	}
	b.obs = obs
	b.mu.Unlock()

	// Passes for mutations after registered include obs. Only the
	// mutations between Render and register are compared here.
	value, registered := b.store.register(obs)
	if registered == version {
		return
	}
	obs.check(value)
}

// Detach removes the binding from its store. A running pass does not notify
// the binding after Detach returns, unless the notify call had already
// started on another goroutine.
func (b *Binding[T, P]) Detach() {
	b.mu.Lock()
	obs := b.obs
	b.obs = nil
	b.mu.Unlock()

	if obs != nil {
		b.store.unregister(obs)
	}
}

// Refresh renders and, if attached, re-registers with the fresh projection as
// the last-seen value. It returns the fresh projection.
func (b *Binding[T, P]) Refresh() P {
	p := b.Render()
	if b.Live() {
		b.Detach()
		b.Attach()
	}
	return p
}

func (b *Binding[T, P]) projector() func(T) P {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.project
}

// setProjector swaps the projector used by the next Render and Attach.
func (b *Binding[T, P]) setProjector(project func(T) P) {
	b.mu.Lock()
	b.project = project
	b.mu.Unlock()
}

// Watch binds project to s, attaches, and calls fn with each changed
// projection. After every call the binding is refreshed so later passes
// compare against the latest delivered value.
func Watch[T, P any](s *Store[T], project func(T) P, fn func(P), opts ...BindOption) *Binding[T, P] {
	var b *Binding[T, P]
	b = Bind(s, project, func(next func() P) {
		fn(next())
		b.Refresh()
	}, opts...)
	b.Attach()
	return b
}
