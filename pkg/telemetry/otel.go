package telemetry

import (
	"context"
	"fmt"

	"github.com/vango-dev/oz/pkg/reactive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for oz runtimes.
const defaultTracerName = "oz/reactive"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "oz/reactive").
	TracerName string

	// Provider supplies the tracer. If nil, the global provider is used.
	Provider trace.TracerProvider

	// Parent is the context spans are started from (default:
	// context.Background()).
	Parent context.Context

	// Filter determines which events become spans. If nil, notifications
	// and settlements are traced.
	Filter func(reactive.Event) bool
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(provider trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = provider
	}
}

// WithParent sets the context spans are started from.
func WithParent(ctx context.Context) TracerOption {
	return func(c *TracerConfig) {
		c.Parent = ctx
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(reactive.Event) bool) TracerOption {
	return func(c *TracerConfig) {
		c.Filter = filter
	}
}

func defaultTracerConfig() TracerConfig {
	return TracerConfig{
		TracerName: defaultTracerName,
		Parent:     context.Background(),
	}
}

func defaultFilter(e reactive.Event) bool {
	return e.Type == reactive.EventNotify || e.Type == reactive.EventSettle
}

// Tracer is a reactive.Observer that records runtime events as spans. Span
// timestamps come from the event, so a notification span covers exactly the
// time its watchers took to run.
type Tracer struct {
	config TracerConfig
	tracer trace.Tracer
}

// NewTracer returns an observer that traces runtime events.
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// passed with WithTracerProvider. Configure it in main() before creating
// the runtime:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//	rt := reactive.New(reactive.WithObserver(telemetry.NewTracer()))
func NewTracer(opts ...TracerOption) *Tracer {
	config := defaultTracerConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Filter == nil {
		config.Filter = defaultFilter
	}
	if config.Parent == nil {
		config.Parent = context.Background()
	}

	provider := config.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{
		config: config,
		tracer: provider.Tracer(config.TracerName),
	}
}

// Observe implements reactive.Observer.
func (t *Tracer) Observe(e reactive.Event) {
	if !t.config.Filter(e) {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("oz.kind", e.Kind.String()),
		attribute.StringSlice("oz.keys", formatKeys(e.Keys)),
	}
	switch e.Type {
	case reactive.EventNotify:
		attrs = append(attrs,
			attribute.Bool("oz.deep", e.Deep),
			attribute.Int("oz.batch", e.Batch),
			attribute.Int("oz.fired", e.Fired),
		)
	case reactive.EventWatch, reactive.EventUnwatch:
		attrs = append(attrs, attribute.Int64("oz.watcher_id", int64(e.WatcherID)))
		if e.Watcher != "" {
			attrs = append(attrs, attribute.String("oz.watcher", e.Watcher))
		}
	}

	_, span := t.tracer.Start(
		t.config.Parent,
		fmt.Sprintf("reactive.%s", e.Type),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(e.Time),
	)

	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(e.Time.Add(e.Duration)))
}

// formatKeys renders keys for a span attribute.
func formatKeys(keys []any) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprint(k)
	}
	return out
}
