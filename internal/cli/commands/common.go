package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/loglens/pkg/config"
	"github.com/ccollicutt/loglens/pkg/ingest"
	"github.com/ccollicutt/loglens/pkg/parser"
)

// ExitCode is set by commands that complete without error but still need a
// non-zero exit, such as parse --fail-on-errors.
var ExitCode = 0

var (
	current = config.DefaultConfig()
	logger  = zap.NewNop()
)

// Configure installs the configuration and logger resolved by the root command.
func Configure(cfg *config.Config, l *zap.Logger) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if l == nil {
		l = zap.NewNop()
	}
	current = cfg
	logger = l
}

// ParserFlags are the parser overrides shared by the commands that read logs.
type ParserFlags struct {
	Format     string
	Delimiter  string
	Regex      string
	SkipHeader bool
}

func addParserFlags(cmd *cobra.Command, f *ParserFlags) {
	cmd.Flags().StringVar(&f.Format, "format", "", "Log format (auto|clf|combined|json|csv|app|custom|raw)")
	cmd.Flags().StringVar(&f.Delimiter, "delimiter", "", "CSV delimiter (single character)")
	cmd.Flags().StringVar(&f.Regex, "regex", "", "Regular expression for the custom format")
	cmd.Flags().BoolVar(&f.SkipHeader, "skip-header", false, "Drop the CSV header row from the records")
}

// resolve applies the flag overrides to a copy of the active configuration
// and validates the result.
func (f *ParserFlags) resolve() (*config.Config, error) {
	cfg := *current
	if f.Format != "" {
		cfg.Parser.Format = f.Format
	}
	if f.Delimiter != "" {
		cfg.Parser.Delimiter = f.Delimiter
	}
	if f.Regex != "" {
		cfg.Parser.CustomRegex = f.Regex
	}
	if f.SkipHeader {
		cfg.Parser.SkipCSVHeader = true
	}
	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// source is one parsed input.
type source struct {
	Path    string
	Dataset *ingest.Dataset
}

// loadSources expands the input patterns and parses each matched file as a
// separate run, in order.
func loadSources(cmd *cobra.Command, patterns []string, cfg *config.Config) ([]source, error) {
	ctx := commandContext(cmd)

	paths, err := parser.ExpandGlobs(patterns)
	if err != nil {
		return nil, err
	}

	pipeline := ingest.New(ingest.WithLogger(logger))
	sources := make([]source, 0, len(paths))
	for _, path := range paths {
		content, err := parser.ReadInput(ctx, path, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		ds, err := pipeline.Ingest(ctx, content, cfg.ParserConfig())
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", displayName(path), err)
		}
		sources = append(sources, source{Path: path, Dataset: ds})
	}
	return sources, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func displayName(path string) string {
	if path == parser.StdinPath {
		return "stdin"
	}
	return path
}
