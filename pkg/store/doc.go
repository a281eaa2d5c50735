// Package store provides a minimal external-state container whose observers
// are notified only when the value they derive from the store changes.
//
// A store holds one value. It is replaced wholesale with Set, Update or, for
// stores created with a reducer, Dispatch. After every replacement the store
// runs a notification pass: each attached observer re-derives its projection
// and is notified only if the projection changed from the one it last saw
// (see package equality).
//
//	counter := store.New(0)
//
//	w := store.Watch(counter, func(n int) bool { return n%2 == 0 },
//	    func(even bool) { fmt.Println("even:", even) })
//	defer w.Detach()
//
//	counter.Update(func(n int) int { return n + 1 }) // even: false
//	counter.Update(func(n int) int { return n + 2 }) // no notification
//
// Bind gives full control over the binding lifecycle: the store never updates
// a binding's last-seen projection itself, so a host re-renders (Render) and
// re-attaches (Refresh) after each notification.
//
// Inside a host component, Use and UseSelect manage the binding lifecycle:
//
//	host.NewOwner(func(o *host.Owner) {
//	    count := store.Use(counter, o)
//	    ...
//	})
//
// # Reducers
//
//	todos := store.NewReducer(State{}, func(s State, a Action) State { ... })
//	todos.Dispatch(AddTodo{Title: "write docs"})
//
// Calling Dispatch on a store without a reducer is a configuration error. It is
// logged (code S001) and ignored, never raised.
//
// # Re-entrancy and Concurrency
//
// Stores are safe for concurrent use. Observer callbacks run without any store
// lock held. A mutation issued while a notification pass is running, whether
// from inside a callback or from another goroutine, is queued and applied by
// the goroutine running the pass once the current pass finishes, in FIFO
// order, each followed by its own pass. Such a call returns before its value
// is applied.
package store
