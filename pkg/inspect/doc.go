// Package inspect serves a store over HTTP for debugging and tooling.
//
// An inspector is one more host for a store. Each /watch websocket binds its
// own observer, so a browser tab or script sees exactly the notifications a
// component with the same projection would see.
//
// # Routes
//
//	GET  /healthz          liveness probe
//	GET  /state            JSON of the current value
//	PUT  /state            replace the value with the request body
//	POST /dispatch         decode an action and dispatch it (WithDispatch)
//	GET  /watch            websocket stream of projection changes
//	GET  /metrics          Prometheus exposition (WithGatherer)
//
// /watch accepts two query parameters. path selects a projection by walking
// the JSON form of the value ("items.0.title"). policy selects "shallow" or
// "deep" change detection for this watcher.
//
// # Usage
//
//	todos := store.NewReducer(todoList{}, reduceTodos)
//	srv := inspect.New(todos.Store,
//	    inspect.WithDispatch(inspect.DispatchJSON(todos)),
//	    inspect.WithGatherer(registry),
//	)
//	defer srv.Close()
//
//	http.ListenAndServe(":7070", srv.Handler())
package inspect
