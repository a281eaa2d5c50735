// Package host is a minimal component host for store observers.
//
// It provides the two primitives a store binding needs from a UI runtime:
//
//   - a layout effect: a callback that runs once after the current render
//     commits and returns a cleanup that runs before the next run or when
//     the component unmounts
//   - a forced re-render: MarkDirty schedules the component to render again
//
// An Owner is one component. Its render function is called with the Owner
// so hooks can keep per-call-site state in hook slots:
//
//	counter := host.NewOwner(func(o *host.Owner) {
//	    count := store.Use(counterStore, o)
//	    fmt.Println("count:", count)
//	})
//	counter.Mount()
//	defer counter.Unmount()
//
// Hooks must be called in the same order on every render.
package host
