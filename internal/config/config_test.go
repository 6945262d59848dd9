package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Devtools.Addr != DefaultDevtoolsAddr {
		t.Errorf("Devtools.Addr = %q, want %q", cfg.Devtools.Addr, DefaultDevtoolsAddr)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
	if cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled should default to false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if !strings.Contains(err.Error(), "E101") {
		t.Errorf("Expected E101 error, got: %v", err)
	}

	configJSON := `{
  "log": {"level": "DEBUG", "format": "json"},
  "metrics": {"enabled": false},
  "tracing": {"enabled": true, "tracerName": "demo"},
  "devtools": {"addr": "0.0.0.0:9000"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want default", cfg.Metrics.Namespace)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.TracerName != "demo" {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Devtools.Addr != "0.0.0.0:9000" {
		t.Errorf("Devtools.Addr = %q", cfg.Devtools.Addr)
	}
	if cfg.Devtools.History != DefaultHistory {
		t.Errorf("Devtools.History = %d, want %d", cfg.Devtools.History, DefaultHistory)
	}
	if cfg.Runtime.QueueSize != DefaultQueueSize {
		t.Errorf("Runtime.QueueSize = %d, want %d", cfg.Runtime.QueueSize, DefaultQueueSize)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(configPath, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "E102") {
		t.Errorf("Expected E102 error, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantCode string
	}{
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "E103"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "E104"},
		{"bad addr", func(c *Config) { c.Devtools.Addr = "7070" }, "E105"},
		{"negative history", func(c *Config) { c.Devtools.History = -1 }, "E105"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantCode) {
				t.Errorf("error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)

	cfg := New()
	cfg.Devtools.Addr = "127.0.0.1:9100"
	cfg.Tracing.Enabled = true

	if err := cfg.Save(); err == nil {
		t.Error("Expected error when saving without path")
	}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Devtools.Addr != "127.0.0.1:9100" {
		t.Errorf("Devtools.Addr = %q", loaded.Devtools.Addr)
	}
	if !loaded.Tracing.Enabled {
		t.Error("Tracing.Enabled should round-trip")
	}

	loaded.Log.Level = "warn"
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover without config: %v", err)
	}
	if cfg.Path() != "" || cfg.Log.Level != DefaultLogLevel {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`{"log":{"level":"error"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	found, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	if found != root {
		t.Errorf("FindProjectRoot = %q, want %q", found, root)
	}

	cfg, err = Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("unexpected JSON output: %s", out)
	}

	if got := (LogConfig{Level: "bogus"}).SlogLevel(); got != slog.LevelInfo {
		t.Errorf("SlogLevel() = %v, want info", got)
	}
}
