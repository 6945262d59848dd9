// Package telemetry provides observers that export reactive runtime activity.
//
// Both observers implement reactive.Observer and are attached when the
// runtime is created:
//
//	rt := reactive.New(
//	    reactive.WithObserver(telemetry.NewMetrics(telemetry.WithNamespace("myapp"))),
//	    reactive.WithObserver(telemetry.NewTracer(telemetry.WithTracerName("myapp"))),
//	)
//
// # Prometheus Metrics
//
// NewMetrics counts events by type and kind, tracks live watchers and
// records how long notifications take and how many watchers they re-run.
// Expose the registry with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// NewTracer turns notifications and deferred settlements into spans whose
// start and end come from the event itself. Use WithEventFilter to trace
// other event types.
//
// Observers run on the runtime goroutine. Prometheus collectors are safe
// for concurrent use, so the metrics can be scraped from any goroutine.
package telemetry
