package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	if !cfg.Analytics.ConversionTrackingEnabled {
		t.Error("conversion tracking should default to enabled")
	}
	if !cfg.Analytics.PerformanceMonitoringEnabled {
		t.Error("performance monitoring should default to enabled")
	}
	if !cfg.Analytics.ABTestingEnabled {
		t.Error("A/B testing should default to enabled")
	}
	if cfg.Analytics.MeasurementID != "" {
		t.Error("measurement ID should default to empty so a bare deployment has no third-party sinks")
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("expected default address, got %s", cfg.Server.Address)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  address: ":9999"
analytics:
  measurement_id: "G-TEST1234"
  conversion_tracking_enabled: false
  memory_sample_interval: 10s
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Address != ":9999" {
		t.Errorf("expected :9999, got %s", cfg.Server.Address)
	}
	if cfg.Analytics.MeasurementID != "G-TEST1234" {
		t.Errorf("expected G-TEST1234, got %s", cfg.Analytics.MeasurementID)
	}
	if cfg.Analytics.ConversionTrackingEnabled {
		t.Error("conversion tracking should be disabled by the file")
	}
	if cfg.Analytics.MemorySampleInterval != 10*time.Second {
		t.Errorf("expected 10s, got %s", cfg.Analytics.MemorySampleInterval)
	}
	// Untouched values keep their defaults.
	if !cfg.Analytics.ABTestingEnabled {
		t.Error("A/B testing should keep its default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FUTURFOUNDER_MEASUREMENT_ID", "G-FROMENV")
	t.Setenv("FUTURFOUNDER_DEBUG", "true")

	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Analytics.MeasurementID != "G-FROMENV" {
		t.Errorf("expected env override, got %s", cfg.Analytics.MeasurementID)
	}
	if !cfg.Analytics.Debug {
		t.Error("expected debug enabled from env")
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty address", func(c *Config) { c.Server.Address = "" }},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"zero sample interval", func(c *Config) { c.Analytics.MemorySampleInterval = 0 }},
		{"zero sink timeout", func(c *Config) { c.Analytics.SinkTimeout = 0 }},
		{"redis without address", func(c *Config) { c.Redis.Enabled = true; c.Redis.Address = "" }},
		{"tracing bad sample rate", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.SampleRate = 2 }},
		{"rate limiting without rps", func(c *Config) { c.RateLimiting.Enabled = true; c.RateLimiting.RequestsPerSecond = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
