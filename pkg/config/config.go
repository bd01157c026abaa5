package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/loglens/pkg/export"
	"github.com/ccollicutt/loglens/pkg/parser"
	"github.com/ccollicutt/loglens/pkg/query"
)

// DateLayout is the layout of export start and end dates.
const DateLayout = "2006-01-02"

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Write saves cfg as YAML. An existing file is never overwritten.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("config file %s already exists", path)
		}
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks a configuration for errors and fills defaults for optional values.
func Validate(cfg *Config) error {
	if err := validateParser(&cfg.Parser); err != nil {
		return fmt.Errorf("parser: %w", err)
	}

	if err := validateView(&cfg.View); err != nil {
		return fmt.Errorf("view: %w", err)
	}

	if err := validateExport(&cfg.Export); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateParser(p *ParserConfig) error {
	format, err := parser.ParseFormat(p.Format)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	p.Format = string(format)

	if p.Delimiter == "" {
		p.Delimiter = ","
	}
	if utf8.RuneCountInString(p.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", p.Delimiter)
	}

	// A pattern that does not compile is reported on each parsed line.
	if format == parser.FormatCustom && p.CustomRegex == "" {
		return fmt.Errorf("custom_regex: %w", parser.ErrCustomRegexMissing)
	}

	if p.Timezone == "" {
		return errors.New("timezone must not be empty")
	}
	if p.DateFormat == "" {
		return errors.New("date_format must not be empty")
	}

	switch parser.Format(p.AutoFallback) {
	case "":
		p.AutoFallback = string(parser.FormatCLF)
	case parser.FormatCLF, parser.FormatRaw:
	default:
		return fmt.Errorf("invalid auto_fallback %q (must be clf or raw)", p.AutoFallback)
	}

	if p.SampleSize < 0 {
		return fmt.Errorf("sample_size must be >= 0, got %d", p.SampleSize)
	}

	return nil
}

func validateView(v *ViewConfig) error {
	if _, err := query.ParseDirection(v.SortDirection); err != nil {
		return err
	}
	if v.Page < 1 {
		v.Page = 1
	}
	if v.PageSize <= 0 {
		v.PageSize = query.DefaultPageSize
	}
	return nil
}

func validateExport(e *ExportConfig) error {
	if e.Format == "" {
		e.Format = DefaultExportFormat
	}
	if _, err := export.ParseFormat(e.Format); err != nil {
		return err
	}

	start, err := parseDate(e.StartDate)
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	end, err := parseDate(e.EndDate)
	if err != nil {
		return fmt.Errorf("end_date: %w", err)
	}
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("end_date %s is before start_date %s", e.EndDate, e.StartDate)
	}
	return nil
}

func validateLogging(l *LoggingConfig) error {
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("invalid level %q: %w", l.Level, err)
	}

	switch l.Format {
	case "":
		l.Format = DefaultLogFormat
	case "console", "json":
	default:
		return fmt.Errorf("invalid format %q (must be console or json)", l.Format)
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnErrors
	case WebhookTriggerOnErrors, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_errors, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return &t, nil
}
