package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Validation.RootDocument != "base" {
		t.Errorf("RootDocument = %q, want %q", cfg.Validation.RootDocument, "base")
	}
	if cfg.Validation.MaxDepth != 32 {
		t.Errorf("MaxDepth = %d, want 32", cfg.Validation.MaxDepth)
	}
	if cfg.Loader.MaxFileSize != 1024*1024 {
		t.Errorf("MaxFileSize = %d, want 1MB", cfg.Loader.MaxFileSize)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Debounce = %v, want 250ms", cfg.Watch.Debounce)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if cfg.Audit.Enabled {
		t.Error("Audit.Enabled = true, want false")
	}
	if cfg.Rulesets == nil {
		t.Error("Rulesets is nil")
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Validation: ValidationConfig{RootDocument: "entry", MaxDepth: 4},
		Server:     ServerConfig{ListenAddress: "0.0.0.0:9000"},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{Level: "debug"},
		},
	}

	ApplyDefaults(cfg)

	if cfg.Validation.RootDocument != "entry" {
		t.Errorf("RootDocument = %q, want %q", cfg.Validation.RootDocument, "entry")
	}
	if cfg.Validation.MaxDepth != 4 {
		t.Errorf("MaxDepth = %d, want 4", cfg.Validation.MaxDepth)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, "0.0.0.0:9000")
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Level = %q, want %q", cfg.Telemetry.Logging.Level, "debug")
	}
	if cfg.Telemetry.Logging.Format != DefaultLogFormat {
		t.Errorf("Format = %q, want %q", cfg.Telemetry.Logging.Format, DefaultLogFormat)
	}
}
