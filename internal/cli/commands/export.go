package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/loglens/pkg/config"
	"github.com/ccollicutt/loglens/pkg/export"
	"github.com/ccollicutt/loglens/pkg/parser"
	"github.com/ccollicutt/loglens/pkg/query"
)

// ExportOptions holds command-line options for the export command.
type ExportOptions struct {
	Parser ParserFlags
	Fields []string
	Start  string
	End    string
	Format string
	Out    string
	Search string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export <log-file|->",
		Short: "Export parsed entries as JSON, CSV or a text report",
		Long: `Parse a log file and export the entries.

Entries matching --search are exported in the configured sort order.
--fields selects and orders the exported fields; without it every field
is exported. --start and --end limit the export to whole calendar days
(YYYY-MM-DD, inclusive, UTC).

--out names the output file. When it is an existing directory the file is
created there as loglens_export_<date>.<ext>. Without --out the export is
written to standard output.

Example:
  loglens export -f csv --fields timestamp,ip,status access.log
  loglens export -f txt --start 2023-10-01 --end 2023-10-07 --out reports/ access.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}

	addParserFlags(cmd, &opts.Parser)
	cmd.Flags().StringSliceVar(&opts.Fields, "fields", nil, "Comma-separated fields to export (default all)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "First day to export (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.End, "end", "", "Last day to export (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&opts.Format, "export-format", "f", "", "Export format (json|csv|txt)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output file or directory (default stdout)")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Export only entries matching this term")

	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts *ExportOptions) error {
	cfg, err := opts.Parser.resolve()
	if err != nil {
		return err
	}

	req, err := opts.request(cfg)
	if err != nil {
		return err
	}

	sources, err := loadSources(cmd, args, cfg)
	if err != nil {
		return err
	}
	if len(sources) != 1 {
		return fmt.Errorf("export takes a single input, %d files matched", len(sources))
	}

	view := cfg.QueryView()
	if opts.Search != "" {
		view.SearchTerm = opts.Search
	}
	entries := query.Sort(query.Filter(sources[0].Dataset.Entries, view.SearchTerm), view.SortField, view.SortDirection)

	if opts.Out == "" {
		_, err := export.Export(commandContext(cmd), entries, req, cmd.OutOrStdout())
		return err
	}

	path := outputPath(opts.Out, req.Format, time.Now())
	n, err := writeExportFile(cmd, path, entries, req)
	if err != nil {
		return err
	}
	logger.Info("export written",
		zap.String("path", path),
		zap.String("format", string(req.Format)),
		zap.Int("records", n))
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries to %s\n", n, path)
	return nil
}

// request layers the flags that were given over the configured export section.
func (opts *ExportOptions) request(cfg *config.Config) (export.Request, error) {
	req, err := cfg.ExportRequest()
	if err != nil {
		return req, err
	}
	if len(opts.Fields) > 0 {
		req.Fields = opts.Fields
	}
	if opts.Format != "" {
		if req.Format, err = export.ParseFormat(opts.Format); err != nil {
			return req, err
		}
	}
	if opts.Start != "" {
		if req.Start, err = config.ParseDate(opts.Start); err != nil {
			return req, fmt.Errorf("--start: %w", err)
		}
	}
	if opts.End != "" {
		if req.End, err = config.ParseDate(opts.End); err != nil {
			return req, fmt.Errorf("--end: %w", err)
		}
	}
	if req.Start != nil && req.End != nil && req.End.Before(*req.Start) {
		return req, fmt.Errorf("--end %s is before --start %s", req.End.Format(config.DateLayout), req.Start.Format(config.DateLayout))
	}
	return req, nil
}

// outputPath resolves --out. A directory receives a dated default file name.
func outputPath(out string, format export.Format, now time.Time) string {
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, "loglens_export_"+now.Format(config.DateLayout)+format.Extension())
	}
	return out
}

// writeExportFile exports into path. Nothing is created when the export fails.
func writeExportFile(cmd *cobra.Command, path string, entries []parser.LogEntry, req export.Request) (int, error) {
	var buf bytes.Buffer
	n, err := export.Export(commandContext(cmd), entries, req, &buf)
	if err != nil {
		return 0, err
	}
	// #nosec G306 - exports are not secret
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("writing export file: %w", err)
	}
	return n, nil
}
