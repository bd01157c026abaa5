package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/loglens/pkg/parser"
	"github.com/ccollicutt/loglens/pkg/query"
)

// QueryOptions holds command-line options for the query command.
type QueryOptions struct {
	Parser    ParserFlags
	Output    string
	Search    string
	Sort      string
	Direction string
	Page      int
	PageSize  int
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <log-file|->",
		Short: "Search, sort and page through parsed entries",
		Long: `Parse a log file and print one page of entries.

The search term is matched case-insensitively against every field value.
Matching entries are sorted by any field and split into pages. Defaults
come from the view section of the config file.

Example:
  loglens query --search error access.log
  loglens query --sort status --dir desc --page 2 --page-size 50 access.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	addParserFlags(cmd, &opts.Parser)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "table", "Output format (table|json)")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Case-insensitive search term")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Field to sort by (default from config: timestamp)")
	cmd.Flags().StringVar(&opts.Direction, "dir", "", "Sort direction (asc|desc)")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "Page number, starting at 1")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "Entries per page")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	if opts.Output != "table" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use table or json)", opts.Output)
	}

	cfg, err := opts.Parser.resolve()
	if err != nil {
		return err
	}

	view, err := opts.view(cfg.QueryView())
	if err != nil {
		return err
	}

	sources, err := loadSources(cmd, args, cfg)
	if err != nil {
		return err
	}
	if len(sources) != 1 {
		return fmt.Errorf("query takes a single input, %d files matched", len(sources))
	}

	result := view.Apply(sources[0].Dataset.Entries)

	out := cmd.OutOrStdout()
	if opts.Output == "json" {
		return writeQueryJSON(out, result)
	}

	fmt.Fprintf(out, "Showing page %d of %d (%d of %d entries match)\n",
		result.Page, result.TotalPages, result.ShownCount, result.TotalCount)
	return writeEntryTable(out, result.Entries)
}

// view layers the flags that were given over the configured view.
func (opts *QueryOptions) view(base query.View) (query.View, error) {
	v := base
	if opts.Search != "" {
		v.SearchTerm = opts.Search
	}
	if opts.Sort != "" {
		v.SortField = opts.Sort
	}
	if opts.Direction != "" {
		dir, err := query.ParseDirection(opts.Direction)
		if err != nil {
			return v, err
		}
		v.SortDirection = dir
	}
	if opts.Page != 0 {
		v.Page = opts.Page
	}
	if opts.PageSize != 0 {
		if opts.PageSize < 0 {
			return v, fmt.Errorf("page size must be positive, got %d", opts.PageSize)
		}
		v.PageSize = opts.PageSize
	}
	return v, nil
}

// queryOutput is the JSON form of a query result.
type queryOutput struct {
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	ShownCount int               `json:"shown_count"`
	TotalCount int               `json:"total_count"`
	Entries    []parser.LogEntry `json:"entries"`
}

func writeQueryJSON(w io.Writer, result query.Result) error {
	doc := queryOutput{
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
		ShownCount: result.ShownCount,
		TotalCount: result.TotalCount,
		Entries:    result.Entries,
	}
	if doc.Entries == nil {
		doc.Entries = []parser.LogEntry{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
