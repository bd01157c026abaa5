package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ccollicutt/loglens/pkg/parser"
)

// TextFormatter formats records as a human-readable report.
type TextFormatter struct {
	now func() time.Time
}

// NewTextFormatter creates a text formatter. A nil clock uses time.Now.
func NewTextFormatter(now func() time.Time) *TextFormatter {
	if now == nil {
		now = time.Now
	}
	return &TextFormatter{now: now}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return string(FormatText)
}

// Format renders the records as a report.
func (f *TextFormatter) Format(_ context.Context, records []Record, w io.Writer) error {
	lines := []string{
		"Log Analysis Report",
		strings.Repeat("=", 50),
		fmt.Sprintf("Generated: %s", f.now().Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Total Entries in Report: %d", len(records)),
		"",
	}

	for i, r := range records {
		lines = append(lines, fmt.Sprintf("Entry %d:", i+1))
		for j, k := range r.Keys {
			lines = append(lines, fmt.Sprintf("  %-15s: %s", k, textValue(r.Values[j])))
		}
		lines = append(lines, "")
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func textValue(v any) string {
	if v == nil {
		return "null"
	}
	return parser.Stringify(v)
}
