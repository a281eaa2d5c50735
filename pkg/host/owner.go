package host

import (
	"sync"
	"sync/atomic"

	"github.com/vango-dev/vstore/pkg/equality"
)

// Cleanup is returned by effects and runs before the effect re-runs or on unmount.
type Cleanup func()

// Effect is a layout effect body.
type Effect func() Cleanup

var idCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

// Option configures an Owner.
type Option func(*Owner)

// WithScheduler sets the function that runs when the owner is marked dirty.
// The default flushes synchronously.
func WithScheduler(schedule func(*Owner)) Option {
	return func(o *Owner) {
		o.schedule = schedule
	}
}

// Owner is a component scope: a render function plus the hook state and
// layout effects it owns.
type Owner struct {
	id uint64

	render   func(*Owner)
	schedule func(*Owner)

	// Hook slot storage for stable identity across renders.
	hookSlots   []any
	hookSlotIdx int

	// pendingEffects are layout effects scheduled to run after the next commit.
	pendingEffects   []*effectSlot
	pendingEffectsMu sync.Mutex

	// effects are every effect slot in call order, used for unmount cleanup.
	effects   []*effectSlot
	effectsMu sync.Mutex

	rendering   atomic.Bool
	dirty       atomic.Bool
	mounted     atomic.Bool
	disposed    atomic.Bool
	renderCount atomic.Int64
}

type effectSlot struct {
	deps    []any
	ran     bool
	effect  Effect
	cleanup Cleanup
}

// NewOwner creates an unmounted component.
func NewOwner(render func(*Owner), opts ...Option) *Owner {
	o := &Owner{
		id:     nextID(),
		render: render,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// IsMounted reports whether Mount has run and Unmount has not.
func (o *Owner) IsMounted() bool {
	return o.mounted.Load() && !o.disposed.Load()
}

// IsDisposed returns true if this Owner has been unmounted.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// RenderCount returns how many times the render function has run.
func (o *Owner) RenderCount() int {
	return int(o.renderCount.Load())
}

// Mount renders the component and commits its layout effects.
func (o *Owner) Mount() {
	if o.disposed.Load() || o.mounted.Swap(true) {
		return
	}
	o.dirty.Store(true)
	o.Flush()
}

// MarkDirty forces a re-render through the scheduler.
// Repeated calls before the next render collapse into one.
func (o *Owner) MarkDirty() {
	if !o.IsMounted() {
		return
	}
	if o.dirty.Swap(true) {
		return
	}
	if o.schedule != nil {
		o.schedule(o)
		return
	}
	o.Flush()
}

// Flush renders and commits until the owner is clean. A Flush that starts
// while another is rendering returns at once; the running one picks up the
// new work.
func (o *Owner) Flush() {
	for {
		if o.disposed.Load() || o.rendering.Swap(true) {
			return
		}
		for o.dirty.Swap(false) && !o.disposed.Load() {
			o.hookSlotIdx = 0
			o.render(o)
			o.renderCount.Add(1)
			o.commit()
		}
		o.rendering.Store(false)
		if !o.dirty.Load() {
			return
		}
	}
}

// commit runs the layout effects scheduled during the last render.
func (o *Owner) commit() {
	o.pendingEffectsMu.Lock()
	effects := o.pendingEffects
	o.pendingEffects = nil
	o.pendingEffectsMu.Unlock()

	for _, slot := range effects {
		if o.disposed.Load() {
			return
		}
		if slot.cleanup != nil {
			slot.cleanup()
			slot.cleanup = nil
		}
		slot.cleanup = slot.effect()
	}
}

// Unmount runs every effect cleanup in reverse order and disposes the owner.
func (o *Owner) Unmount() {
	if o.disposed.Swap(true) {
		return
	}

	o.pendingEffectsMu.Lock()
	o.pendingEffects = nil
	o.pendingEffectsMu.Unlock()

	o.effectsMu.Lock()
	effects := o.effects
	o.effects = nil
	o.effectsMu.Unlock()

	for i := len(effects) - 1; i >= 0; i-- {
		if cleanup := effects[i].cleanup; cleanup != nil {
			effects[i].cleanup = nil
			cleanup()
		}
	}
}

// UseHookSlot returns the stored value for the current hook slot, or nil on
// the first render. The caller then stores the initial value with SetHookSlot.
func (o *Owner) UseHookSlot() any {
	idx := o.hookSlotIdx
	o.hookSlotIdx++

	if idx < len(o.hookSlots) {
		return o.hookSlots[idx]
	}
	return nil
}

// SetHookSlot stores a value in the current hook slot.
// Must be called after UseHookSlot returns nil (first render).
func (o *Owner) SetHookSlot(value any) {
	o.hookSlots = append(o.hookSlots, value)
}

// UseSlot returns the value kept in the current hook slot, creating it with
// init on the first render.
func UseSlot[V any](o *Owner, init func() V) V {
	if v := o.UseHookSlot(); v != nil {
		return v.(V)
	}
	v := init()
	o.SetHookSlot(v)
	return v
}

// UseEffect schedules effect to run after this render commits when any of
// deps changed identity since the last run (see equality.Same). With no deps
// the effect runs once, after the first commit.
func (o *Owner) UseEffect(effect Effect, deps ...any) {
	slot := UseSlot(o, func() *effectSlot {
		s := &effectSlot{}
		o.effectsMu.Lock()
		o.effects = append(o.effects, s)
		o.effectsMu.Unlock()
		return s
	})

	if slot.ran && sameDeps(slot.deps, deps) {
		return
	}
	slot.ran = true
	slot.deps = deps
	slot.effect = effect

	o.pendingEffectsMu.Lock()
	o.pendingEffects = append(o.pendingEffects, slot)
	o.pendingEffectsMu.Unlock()
}

func sameDeps(prev, next []any) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if !equality.Same(prev[i], next[i]) {
			return false
		}
	}
	return true
}
