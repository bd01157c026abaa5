package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Default values for configuration.
const (
	DefaultWebhookTimeout = 10 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultExportFormat   = "json"
)

// Environment variable names.
const (
	EnvFormat    = "LOGLENS_FORMAT"
	EnvDelimiter = "LOGLENS_DELIMITER"
	EnvLogLevel  = "LOGLENS_LOG_LEVEL"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Parser: ParserConfig{
			Format:       "auto",
			Delimiter:    ",",
			Timezone:     "UTC",
			DateFormat:   "YYYY-MM-DD HH:mm:ss",
			AutoFallback: "clf",
			SampleSize:   100,
		},
		View: ViewConfig{
			SortField:     "timestamp",
			SortDirection: "asc",
			Page:          1,
			PageSize:      25,
		},
		Export: ExportConfig{
			Format: DefaultExportFormat,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if format := os.Getenv(EnvFormat); format != "" {
		c.Parser.Format = strings.ToLower(format)
	}
	if delim := os.Getenv(EnvDelimiter); delim != "" {
		c.Parser.Delimiter = delim
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
}

// FromEnvironment returns the defaults with environment overrides applied.
// It is used when no config file is given.
func FromEnvironment() (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating environment: %w", err)
	}
	return cfg, nil
}
