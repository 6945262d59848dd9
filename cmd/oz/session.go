package main

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vango-dev/oz/internal/config"
	"github.com/vango-dev/oz/pkg/devtools"
	"github.com/vango-dev/oz/pkg/reactive"
	"github.com/vango-dev/oz/pkg/telemetry"
)

// session is one runtime together with the observers the configuration
// asks for.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	rt       *reactive.Runtime
	registry *prometheus.Registry
	hub      *devtools.Hub
	tp       *sdktrace.TracerProvider
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSession(cmd *cobra.Command, flags *globalFlags, inspect bool) (*session, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		logger:   cfg.Log.NewLogger(cmd.ErrOrStderr()),
		registry: prometheus.NewRegistry(),
	}
	opts := []reactive.Option{
		reactive.WithLogger(s.logger),
		reactive.WithQueueSize(cfg.Runtime.QueueSize),
	}

	if cfg.Metrics.Enabled {
		opts = append(opts, reactive.WithObserver(telemetry.NewMetrics(
			telemetry.WithNamespace(cfg.Metrics.Namespace),
			telemetry.WithRegistry(s.registry),
		)))
	}

	if cfg.Tracing.Enabled {
		tp, err := telemetry.NewStdoutProvider(cmd.ErrOrStderr(), telemetry.ProviderConfig{
			ServiceName:    "oz",
			ServiceVersion: version,
		})
		if err != nil {
			return nil, err
		}
		s.tp = tp
		opts = append(opts, reactive.WithObserver(telemetry.NewTracer(
			telemetry.WithTracerName(cfg.Tracing.TracerName),
			telemetry.WithTracerProvider(tp),
		)))
	}

	if inspect {
		s.hub = devtools.NewHub(cfg.Devtools.History)
		opts = append(opts, reactive.WithObserver(s.hub))
	}

	s.rt = reactive.New(opts...)
	return s, nil
}

func (s *session) Close(ctx context.Context) {
	s.rt.Close()
	if s.tp != nil {
		if err := s.tp.Shutdown(ctx); err != nil {
			s.logger.Warn("tracer shutdown failed", "error", err)
		}
	}
}
