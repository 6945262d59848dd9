package telemetry

import (
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ProviderConfig configures NewStdoutProvider.
type ProviderConfig struct {
	ServiceName    string
	ServiceVersion string
	PrettyPrint    bool
}

// NewStdoutProvider returns a tracer provider that writes every span to w
// as JSON. Call Shutdown on the provider to flush before exiting.
func NewStdoutProvider(w io.Writer, cfg ProviderConfig) (*sdktrace.TracerProvider, error) {
	opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if cfg.PrettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "oz"
	}
	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", name),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}
