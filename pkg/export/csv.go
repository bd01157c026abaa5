package export

import (
	"context"
	"io"
	"strings"

	"github.com/ccollicutt/loglens/pkg/parser"
)

// CSVFormatter formats records as comma-separated values. The header row
// comes from the first record's fields. A value is quoted only when it
// contains a comma or a double quote.
type CSVFormatter struct{}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// Name returns the format name.
func (f *CSVFormatter) Name() string {
	return string(FormatCSV)
}

// Format renders the records as CSV. Rows are joined by "\n" with no trailing newline.
func (f *CSVFormatter) Format(_ context.Context, records []Record, w io.Writer) error {
	if len(records) == 0 {
		return nil
	}

	headers := records[0].Keys
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(headers, ","))

	for _, r := range records {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = csvCell(r.Get(h))
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func csvCell(v any) string {
	s := parser.Stringify(v)
	if strings.ContainsAny(s, `",`) {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
