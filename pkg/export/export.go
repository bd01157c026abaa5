package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ccollicutt/loglens/pkg/parser"
)

// NewFormatter returns the Formatter for format.
func NewFormatter(format Format, now func() time.Time) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatCSV:
		return NewCSVFormatter(), nil
	case FormatText:
		return NewTextFormatter(now), nil
	}
	return nil, fmt.Errorf("%w %q (must be json, csv or txt)", ErrInvalidFormat, format)
}

// Export projects entries per req and writes them to w. An invalid format
// or an empty projection is rejected before anything is written.
func Export(ctx context.Context, entries []parser.LogEntry, req Request, w io.Writer) (int, error) {
	f, err := NewFormatter(req.Format, req.Now)
	if err != nil {
		return 0, err
	}

	records := Project(entries, req)
	if len(records) == 0 {
		return 0, ErrNoData
	}

	if err := f.Format(ctx, records, w); err != nil {
		return 0, fmt.Errorf("writing %s export: %w", f.Name(), err)
	}
	return len(records), nil
}
