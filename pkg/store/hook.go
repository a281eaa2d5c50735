package store

import "github.com/vango-dev/vstore/pkg/host"

// Use returns the whole store value and re-renders o whenever it changes.
func Use[T any](s *Store[T], o *host.Owner, opts ...BindOption) T {
	return UseSelect(s, o, identity[T], opts...)
}

// UseSelect returns project(value) and re-renders o whenever the projection
// changes. The projection is recomputed from the live store on every render.
//
// The binding attaches after the render commits and re-attaches, with the new
// projection as its last-seen value, whenever the projection or the projector
// changes between renders. It detaches when o unmounts.
func UseSelect[T, P any](s *Store[T], o *host.Owner, project func(T) P, opts ...BindOption) P {
	b := host.UseSlot(o, func() *Binding[T, P] {
		return Bind(s, project, func(func() P) { o.MarkDirty() }, opts...)
	})
	b.setProjector(project)
	value := b.Render()

	o.UseEffect(func() host.Cleanup {
		b.Attach()
		return b.Detach
	}, value, project)

	return value
}
