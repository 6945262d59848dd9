package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/oz/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "oz.json"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log format.
	DefaultLogFormat = "text"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "oz"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "oz/reactive"

	// DefaultDevtoolsAddr is the default inspector listen address.
	DefaultDevtoolsAddr = "localhost:7070"

	// DefaultHistory is the default number of events the inspector keeps.
	DefaultHistory = 512

	// DefaultQueueSize is the default runtime task queue capacity.
	DefaultQueueSize = 1024
)

// Config represents the complete oz.json configuration.
type Config struct {
	// Log contains logging configuration.
	Log LogConfig `json:"log"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing"`

	// Devtools contains inspector server configuration.
	Devtools DevtoolsConfig `json:"devtools"`

	// Runtime contains reactive runtime configuration.
	Runtime RuntimeConfig `json:"runtime"`

	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled"`
	TracerName string `json:"tracerName,omitempty"`
}

// DevtoolsConfig contains inspector server settings.
type DevtoolsConfig struct {
	// Addr is the host:port the inspector listens on.
	Addr string `json:"addr,omitempty"`

	// History is the number of events kept for /debug/reactive/events.
	History int `json:"history,omitempty"`
}

// RuntimeConfig contains reactive runtime settings.
type RuntimeConfig struct {
	// QueueSize is the capacity of the task queue that deferred values
	// settle through.
	QueueSize int `json:"queueSize,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Devtools: DevtoolsConfig{
			Addr:    DefaultDevtoolsAddr,
			History: DefaultHistory,
		},
		Runtime: RuntimeConfig{
			QueueSize: DefaultQueueSize,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for oz.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. Fields that
// are absent keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail("No " + ConfigFileName + " found at " + path).
				WithSuggestion("Create " + ConfigFileName + " or omit --config to use the defaults")
		}
		return nil, errors.New("E102").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E106").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E106").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = DefaultDevtoolsAddr
	}
	if c.Devtools.History == 0 {
		c.Devtools.History = DefaultHistory
	}
	if c.Runtime.QueueSize <= 0 {
		c.Runtime.QueueSize = DefaultQueueSize
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := levels[c.Log.Level]; !ok {
		return errors.New("E103").
			WithDetail("Unknown log level " + `"` + c.Log.Level + `"`).
			WithSuggestion("Use one of debug, info, warn or error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E104").
			WithDetail("Unknown log format " + `"` + c.Log.Format + `"`)
	}
	if _, _, err := net.SplitHostPort(c.Devtools.Addr); err != nil {
		return errors.New("E105").
			WithDetail("devtools.addr " + `"` + c.Devtools.Addr + `"` + " is not host:port").
			Wrap(err)
	}
	if c.Devtools.History < 0 {
		return errors.New("E105").
			WithDetail("devtools.history must not be negative")
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured level. Unknown levels map to info.
func (l LogConfig) SlogLevel() slog.Level {
	if level, ok := levels[strings.ToLower(l.Level)]; ok {
		return level
	}
	return slog.LevelInfo
}

// NewLogger builds a logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the nearest directory
// containing oz.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E101").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// Discover loads the nearest oz.json above dir, or returns the defaults
// when there is none.
func Discover(dir string) (*Config, error) {
	root, err := FindProjectRoot(dir)
	if err != nil {
		return New(), nil
	}
	return Load(root)
}
