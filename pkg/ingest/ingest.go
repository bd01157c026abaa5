// Package ingest turns raw log text into an ordered Dataset of LogEntry records.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ccollicutt/loglens/pkg/detector"
	"github.com/ccollicutt/loglens/pkg/parser"
)

// Dataset is the result of one parse run. It is replaced wholesale on re-parse.
type Dataset struct {
	RunID     uuid.UUID
	Format    parser.Format    // Effective format after detection
	Detection *detector.Result // Set when the configured format was auto
	Config    parser.Config
	Entries   []parser.LogEntry
	ParsedAt  time.Time
}

// ErrorCount returns the number of degraded entries.
func (d *Dataset) ErrorCount() int {
	n := 0
	for i := range d.Entries {
		if d.Entries[i].HasError() {
			n++
		}
	}
	return n
}

// Pipeline runs ingestion with a fixed clock and logger.
type Pipeline struct {
	now    parser.Clock
	logger *zap.Logger
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock sets the source of "now" used for unresolvable timestamps.
func WithClock(c parser.Clock) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.now = c
		}
	}
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SplitLines splits content on line breaks and drops lines that are blank
// after trimming. Surviving lines are kept verbatim apart from a trailing "\r".
func SplitLines(content string) []string {
	raw := strings.Split(content, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Ingest parses content with cfg. Each line is parsed independently: a bad
// line yields an error entry and never stops the run. Entry IDs are dense,
// 1-based and follow the order of the non-empty lines.
func (p *Pipeline) Ingest(ctx context.Context, content string, cfg parser.Config) (*Dataset, error) {
	if cfg.Format == "" {
		cfg.Format = parser.FormatAuto
	}
	if cfg.Format == parser.FormatCustom && cfg.CustomRegex == "" {
		return nil, parser.ErrCustomRegexMissing
	}

	lines := SplitLines(content)
	ds := &Dataset{
		RunID:    uuid.New(),
		Format:   cfg.Format,
		Config:   cfg,
		ParsedAt: p.now().UTC(),
	}

	if cfg.Format == parser.FormatAuto {
		d := detector.New(
			detector.WithSampleSize(cfg.SampleSize),
			detector.WithFallback(cfg.AutoFallback),
			detector.WithLogger(p.logger),
		)
		ds.Detection = d.Detect(lines)
		ds.Format = ds.Detection.Format
	}

	var headers []string
	if ds.Format == parser.FormatCSV && len(lines) > 0 {
		headers = parser.SplitHeaders(lines[0], cfg.Delimiter)
		if cfg.SkipCSVHeader {
			lines = lines[1:]
		}
	}

	norm := parser.NewNormalizer(p.now, p.logger)
	lp, err := parser.New(ds.Format, cfg, norm, headers)
	if err != nil {
		return nil, fmt.Errorf("creating %s parser: %w", ds.Format, err)
	}

	ds.Entries = make([]parser.LogEntry, 0, len(lines))
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := lp.Parse(line, i+1)
		if entry.Timestamp.IsZero() {
			entry.Timestamp = norm.Now()
		}
		if entry.Message == "" && entry.OriginalLine != "" {
			entry.Message = entry.OriginalLine
		}
		ds.Entries = append(ds.Entries, entry)
	}

	p.logger.Info("parsed log content",
		zap.String("run_id", ds.RunID.String()),
		zap.String("format", string(ds.Format)),
		zap.Int("entries", len(ds.Entries)),
		zap.Int("errors", ds.ErrorCount()))

	return ds, nil
}
