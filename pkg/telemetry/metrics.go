package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/oz/pkg/reactive"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "oz").
	Namespace string

	// Subsystem is the metrics subsystem (default: "reactive").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for notification duration.
	// Default: 1µs to ~260ms, factor 4.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "oz",
		Subsystem: "reactive",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a reactive.Observer that exports runtime activity as
// Prometheus metrics.
//
// Metrics collected (with the default namespace and subsystem):
//   - oz_reactive_events_total: events by type and kind
//   - oz_reactive_notify_duration_seconds: time spent in one notification
//   - oz_reactive_notify_batch_size: frames collected per notification
//   - oz_reactive_watchers_fired_total: frames that actually re-ran
//   - oz_reactive_watchers_active: live watchers
//   - oz_reactive_settled_total: deferred settlements by outcome
type Metrics struct {
	eventsTotal    *prometheus.CounterVec
	notifyDuration prometheus.Histogram
	notifyBatch    prometheus.Histogram
	firedTotal     prometheus.Counter
	watchersActive prometheus.Gauge
	settledTotal   *prometheus.CounterVec
}

// NewMetrics registers the runtime metrics and returns the observer.
// Registration panics if the same metrics are already registered with the
// chosen registry, as promauto does.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	rt := reactive.New(reactive.WithObserver(
//	    telemetry.NewMetrics(telemetry.WithRegistry(reg)),
//	))
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of reactive runtime events",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "kind"}),

		notifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notify_duration_seconds",
			Help:        "Time spent running one notification, including the watchers it fired",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		notifyBatch: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notify_batch_size",
			Help:        "Number of watcher frames collected by one notification",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),

		firedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watchers_fired_total",
			Help:        "Total number of watcher frames re-run by notifications",
			ConstLabels: config.ConstLabels,
		}),

		watchersActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watchers_active",
			Help:        "Number of live watchers",
			ConstLabels: config.ConstLabels,
		}),

		settledTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "settled_total",
			Help:        "Total number of settled deferred values by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),
	}
}

// Observe implements reactive.Observer.
func (m *Metrics) Observe(e reactive.Event) {
	m.eventsTotal.WithLabelValues(e.Type.String(), e.Kind.String()).Inc()

	switch e.Type {
	case reactive.EventWatch:
		m.watchersActive.Inc()
	case reactive.EventUnwatch:
		m.watchersActive.Dec()
	case reactive.EventNotify:
		m.notifyDuration.Observe(e.Duration.Seconds())
		m.notifyBatch.Observe(float64(e.Batch))
		m.firedTotal.Add(float64(e.Fired))
	case reactive.EventSettle:
		status := "resolved"
		if e.Err != nil {
			status = "rejected"
		}
		m.settledTotal.WithLabelValues(status).Inc()
	}
}
