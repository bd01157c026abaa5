// Package config provides configuration loading and validation for LogLens.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Parser   ParserConfig    `yaml:"parser" json:"parser"`
	View     ViewConfig      `yaml:"view" json:"view"`
	Export   ExportConfig    `yaml:"export" json:"export"`
	Logging  LoggingConfig   `yaml:"logging" json:"logging"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty" json:"webhooks,omitempty"`
}

// ParserConfig controls how log content is parsed.
type ParserConfig struct {
	// Format is one of auto, clf, combined, json, csv, app, custom, raw.
	Format string `yaml:"format" json:"format"`

	// Delimiter separates csv values. Must be a single character.
	Delimiter string `yaml:"delimiter" json:"delimiter"`

	// CustomRegex is required when Format is custom.
	CustomRegex string `yaml:"custom_regex,omitempty" json:"custom_regex,omitempty"`

	// Timezone and DateFormat are advisory. They are carried through but no
	// conversion is performed with them.
	Timezone   string `yaml:"timezone" json:"timezone"`
	DateFormat string `yaml:"date_format" json:"date_format"`

	// SkipCSVHeader drops the csv header row from the parsed records.
	SkipCSVHeader bool `yaml:"skip_csv_header" json:"skip_csv_header"`

	// AutoFallback is the format used when auto detection finds no match: clf or raw.
	AutoFallback string `yaml:"auto_fallback" json:"auto_fallback"`

	// SampleSize bounds the lines inspected by auto detection.
	SampleSize int `yaml:"sample_size" json:"sample_size"`
}

// ViewConfig is the default search, sort and page state.
type ViewConfig struct {
	Search        string `yaml:"search,omitempty" json:"search,omitempty"`
	SortField     string `yaml:"sort_field" json:"sort_field"`
	SortDirection string `yaml:"sort_direction" json:"sort_direction"`
	Page          int    `yaml:"page" json:"page"`
	PageSize      int    `yaml:"page_size" json:"page_size"`
}

// ExportConfig is the default export request.
type ExportConfig struct {
	// Format is json, csv or txt.
	Format string `yaml:"format" json:"format"`

	// Fields selects and orders exported fields. Empty exports all fields.
	Fields []string `yaml:"fields,omitempty" json:"fields,omitempty"`

	// StartDate and EndDate are inclusive calendar days (YYYY-MM-DD).
	StartDate string `yaml:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   string `yaml:"end_date,omitempty" json:"end_date,omitempty"`
}

// LoggingConfig controls the application log.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" json:"level"`

	// Format is console or json.
	Format string `yaml:"format" json:"format"`

	// File additionally receives error-level entries when set.
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnErrors fires only when the dataset has degraded records
	// or error responses (default).
	WebhookTriggerOnErrors WebhookTrigger = "on_errors"
	// WebhookTriggerAlways fires after every summary.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint that receives summaries.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url" json:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty" json:"-"`

	// Trigger defaults to "on_errors".
	Trigger WebhookTrigger `yaml:"trigger,omitempty" json:"trigger,omitempty"`

	// Timeout defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}
