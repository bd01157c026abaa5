package export

import (
	"context"
	"io"
)

// Formatter renders projected records in one export encoding.
type Formatter interface {
	// Format renders the records to the given writer.
	Format(ctx context.Context, records []Record, w io.Writer) error

	// Name returns the format name (json, csv, txt).
	Name() string
}
