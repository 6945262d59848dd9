// Package devtools exposes a running reactive runtime for inspection.
//
// A Hub observes the runtime and keeps a bounded event history:
//
//	hub := devtools.NewHub(512)
//	rt := reactive.New(reactive.WithObserver(hub))
//
// A Server publishes the hub over HTTP with a chi router, including a
// WebSocket feed that pushes every new event to connected clients:
//
//	srv := devtools.NewServer(hub, devtools.RuntimeStats(rt))
//	go rt.Run(ctx)
//	err := srv.ListenAndServe(ctx, "localhost:7070")
package devtools
