// Package export projects log entries onto selected fields and encodes them
// as JSON, CSV or a plain-text report.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ccollicutt/loglens/pkg/parser"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "txt"
)

var (
	// ErrInvalidFormat is returned for an unknown export encoding.
	ErrInvalidFormat = errors.New("invalid export format")

	// ErrNoData is returned when nothing is left to export after the date range is applied.
	ErrNoData = errors.New("no data to export: check filters or date range")
)

// ParseFormat converts an encoding name. "text" is accepted for txt.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w %q (must be json, csv or txt)", ErrInvalidFormat, s)
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	return "." + string(f)
}

// Request describes one export.
type Request struct {
	// Fields selects and orders the exported fields. Empty exports every field.
	Fields []string

	// Start and End bound the entries by calendar day, inclusive, in UTC.
	// Start covers the whole day from 00:00:00.000; End runs to 23:59:59.999.
	Start *time.Time
	End   *time.Time

	Format Format

	// Now stamps the text report. Nil uses time.Now.
	Now func() time.Time
}

// Record is one projected entry with its field names in output order.
type Record struct {
	Keys   []string
	Values []any
}

// Get returns the value for key, or nil when absent.
func (r Record) Get(key string) any {
	for i, k := range r.Keys {
		if k == key {
			return r.Values[i]
		}
	}
	return nil
}

// MarshalJSON renders the record as an object with keys in order.
func (r Record) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(parser.JSONValue(r.Values[i]))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
