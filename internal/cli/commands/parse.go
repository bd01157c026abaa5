package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/loglens/pkg/analytics"
	"github.com/ccollicutt/loglens/pkg/ingest"
	"github.com/ccollicutt/loglens/pkg/parser"
)

// messageWidth bounds the message column of table output.
const messageWidth = 60

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Parser       ParserFlags
	Output       string
	FailOnErrors bool
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <log-file|-> [log-file...]",
		Short: "Parse log files into normalized entries",
		Long: `Parse one or more log files and print the normalized entries.

Inputs may be file paths, glob patterns ("**" matches across directories)
or "-" for standard input. Each matched file is parsed as a separate run.

Lines that cannot be parsed are kept as entries carrying an error; use
--fail-on-errors to exit with status 1 when any were produced.

Example:
  loglens parse access.log
  loglens parse --format json -o json 'logs/**/*.jsonl'
  cat app.log | loglens parse --format app -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	addParserFlags(cmd, &opts.Parser)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "table", "Output format (table|json)")
	cmd.Flags().BoolVar(&opts.FailOnErrors, "fail-on-errors", false, "Exit with status 1 when any line failed to parse")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	if opts.Output != "table" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use table or json)", opts.Output)
	}

	cfg, err := opts.Parser.resolve()
	if err != nil {
		return err
	}

	sources, err := loadSources(cmd, args, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	degraded := 0
	for _, src := range sources {
		degraded += src.Dataset.ErrorCount()
		if opts.Output == "json" {
			err = writeParseJSON(out, src)
		} else {
			err = writeParseTable(out, src)
		}
		if err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	if opts.FailOnErrors && degraded > 0 {
		ExitCode = 1
	}
	return nil
}

// parseOutput is the JSON document written per input.
type parseOutput struct {
	Source     string            `json:"source"`
	RunID      string            `json:"run_id"`
	Format     string            `json:"format"`
	Fallback   bool              `json:"fallback"`
	ErrorCount int               `json:"error_count"`
	Entries    []parser.LogEntry `json:"entries"`
}

func writeParseJSON(w io.Writer, src source) error {
	ds := src.Dataset
	doc := parseOutput{
		Source:     displayName(src.Path),
		RunID:      ds.RunID.String(),
		Format:     string(ds.Format),
		Fallback:   isFallback(ds),
		ErrorCount: ds.ErrorCount(),
		Entries:    ds.Entries,
	}
	if doc.Entries == nil {
		doc.Entries = []parser.LogEntry{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func writeParseTable(w io.Writer, src source) error {
	ds := src.Dataset
	fmt.Fprintf(w, "== %s (%s", displayName(src.Path), ds.Format)
	if isFallback(ds) {
		fmt.Fprint(w, ", fallback")
	}
	fmt.Fprintf(w, ") %d entries, %d errors ==\n", len(ds.Entries), ds.ErrorCount())

	return writeEntryTable(w, ds.Entries)
}

func writeEntryTable(w io.Writer, entries []parser.LogEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIMESTAMP\tMESSAGE\tERROR")
	for i := range entries {
		e := &entries[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			e.ID,
			parser.FormatTimestamp(e.Timestamp),
			analytics.Truncate(e.Message, messageWidth),
			e.Error)
	}
	return tw.Flush()
}

func isFallback(ds *ingest.Dataset) bool {
	return ds.Detection != nil && ds.Detection.Fallback
}
