package config

import "time"

// Default values for configuration fields.
const (
	DefaultRootDocument = "base"
	DefaultMaxDepth     = 32

	DefaultMaxFileSize = int64(1024 * 1024)

	DefaultWatchDebounce = 250 * time.Millisecond

	DefaultListenAddress   = "127.0.0.1:8088"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodyBytes    = int64(1024 * 1024)

	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "jsonrules"

	DefaultAuditPath = "jsonrules-audit.db"
)

// Default returns a configuration with every default applied and no
// rulesets. YAML decoded on top of it keeps defaults for omitted fields,
// including booleans whose default is true.
func Default() *Config {
	cfg := &Config{
		Rulesets: make(map[string]map[string]string),
	}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Rulesets == nil {
		cfg.Rulesets = make(map[string]map[string]string)
	}

	// Validation defaults
	if cfg.Validation.RootDocument == "" {
		cfg.Validation.RootDocument = DefaultRootDocument
	}
	if cfg.Validation.MaxDepth == 0 {
		cfg.Validation.MaxDepth = DefaultMaxDepth
	}

	// Loader defaults
	if cfg.Loader.MaxFileSize == 0 {
		cfg.Loader.MaxFileSize = DefaultMaxFileSize
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Audit defaults
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = DefaultAuditPath
	}
}
