package export

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter formats records as a pretty-printed JSON array.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return string(FormatJSON)
}

// Format renders the records as JSON.
func (f *JSONFormatter) Format(_ context.Context, records []Record, w io.Writer) error {
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
