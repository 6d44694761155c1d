package config

import "time"

// Config is the root configuration structure for jsonrules.
type Config struct {
	// Rulesets maps each ruleset name to its rule documents:
	// ruleset -> document name -> file location.
	Rulesets map[string]map[string]string `yaml:"rulesets"`

	// RulesDir is the directory relative document locations are resolved
	// against. LoadConfig defaults it to the config file's directory.
	RulesDir string `yaml:"rules_dir"`

	// Validation contains engine settings.
	Validation ValidationConfig `yaml:"validation"`

	// Loader contains rule document loading limits.
	Loader LoaderConfig `yaml:"loader"`

	// Watch controls hot reload of rule documents.
	Watch WatchConfig `yaml:"watch"`

	// Server contains HTTP validation service configuration.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Audit contains validation history configuration.
	Audit AuditConfig `yaml:"audit"`
}

// ValidationConfig contains settings for the validation engine.
type ValidationConfig struct {
	// RootDocument is the entry-point document of every ruleset.
	// Default: "base"
	RootDocument string `yaml:"root_document"`

	// MaxDepth caps nested document recursion.
	// Default: 32
	MaxDepth int `yaml:"max_depth"`

	// StrictReferences reports file constraints naming a missing document
	// as reference errors instead of plain mismatches.
	// Default: false
	StrictReferences bool `yaml:"strict_references"`
}

// LoaderConfig contains limits applied when reading rule documents.
type LoaderConfig struct {
	// MaxFileSize is the largest accepted rule document in bytes.
	// Default: 1048576 (1MB)
	MaxFileSize int64 `yaml:"max_file_size"`
}

// WatchConfig controls reloading of rule documents.
type WatchConfig struct {
	// Enabled turns on fsnotify based reloads.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Debounce is the quiet period after a file change before reloading.
	// Default: 250ms
	Debounce time.Duration `yaml:"debounce"`

	// ReloadSchedule is a standard cron expression for periodic reloads.
	// Empty disables scheduled reloads.
	ReloadSchedule string `yaml:"reload_schedule"`
}

// ServerConfig contains configuration for the HTTP validation service.
type ServerConfig struct {
	// ListenAddress is the host:port to listen on.
	// Default: "127.0.0.1:8088"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes is the largest accepted request body.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is json or text.
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled exposes metrics on the HTTP server.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path metrics are served on.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "jsonrules"
	Namespace string `yaml:"namespace"`
}

// AuditConfig contains validation history configuration.
type AuditConfig struct {
	// Enabled records every validation run.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file.
	// Default: "jsonrules-audit.db"
	Path string `yaml:"path"`
}
