// Package parser turns raw log lines into normalized LogEntry records.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Format identifies a log line format.
type Format string

const (
	FormatAuto     Format = "auto"
	FormatCLF      Format = "clf"
	FormatCombined Format = "combined"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatApp      Format = "app"
	FormatCustom   Format = "custom"
	FormatRaw      Format = "raw"
)

// Formats lists every accepted format in display order.
var Formats = []Format{
	FormatAuto, FormatCLF, FormatCombined, FormatJSON, FormatCSV, FormatApp, FormatCustom, FormatRaw,
}

// ErrUnknownFormat is returned when a format name is not recognized.
var ErrUnknownFormat = errors.New("unknown log format")

// ErrCustomRegexMissing is returned when the custom format is selected without a pattern.
var ErrCustomRegexMissing = errors.New("Custom regex not provided")

// ParseFormat converts a format name to a Format. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q (must be one of %s)", ErrUnknownFormat, s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Describe returns a human-readable description of a format.
func Describe(f Format) string {
	switch f {
	case FormatAuto:
		return "Automatically detect log format. Tries JSON, then CLF, then application log, then falls back."
	case FormatCLF:
		return `Common Log Format: IP IDENT AUTHUSER [TIMESTAMP] "METHOD URL PROTOCOL" STATUS SIZE`
	case FormatCombined:
		return `Combined Log Format (parsed with the CLF parser; referer and user agent are ignored)`
	case FormatJSON:
		return `Line-delimited JSON. Expects fields like "timestamp", "ip", "message", "status".`
	case FormatCSV:
		return "Delimited values. The first line supplies the headers. Quotes are not interpreted."
	case FormatApp:
		return "Application logs: [TIMESTAMP] LEVEL: MESSAGE"
	case FormatCustom:
		return "User-defined regular expression. Named groups become fields, e.g. (?P<ip>\\S+)."
	case FormatRaw:
		return "Unstructured lines. Each line becomes the message."
	default:
		return "Unknown format."
	}
}

// Config controls a single parse run. It is passed by value and never shared.
type Config struct {
	// Format selects the parser. FormatAuto runs format detection first.
	Format Format

	// Delimiter separates values for FormatCSV. Defaults to ",".
	Delimiter string

	// CustomRegex is the pattern used by FormatCustom.
	CustomRegex string

	// Timezone and DateFormat are advisory only. They are carried through
	// to results but no timezone or layout conversion is performed.
	Timezone   string
	DateFormat string

	// SkipCSVHeader removes the header row from the parsed records.
	// When false the header row is also parsed as the first record.
	SkipCSVHeader bool

	// AutoFallback is the format used when detection finds no match.
	AutoFallback Format

	// SampleSize bounds the number of lines inspected by detection.
	SampleSize int
}

// DefaultConfig returns the parser configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Format:       FormatAuto,
		Delimiter:    ",",
		Timezone:     "UTC",
		DateFormat:   "YYYY-MM-DD HH:mm:ss",
		AutoFallback: FormatCLF,
		SampleSize:   100,
	}
}

// Names of the universal fields every LogEntry carries.
const (
	FieldID           = "id"
	FieldTimestamp    = "timestamp"
	FieldOriginalLine = "originalLine"
	FieldMessage      = "message"
	FieldError        = "error"
)

// LogEntry is a normalized log record.
type LogEntry struct {
	// ID is the 1-based position of the line within the parse run.
	ID int

	// Timestamp is the canonical UTC instant of the record.
	Timestamp time.Time

	// OriginalLine is the verbatim source text.
	OriginalLine string

	// Message is the free-text payload. Falls back to OriginalLine.
	Message string

	// Error describes a parse failure. A non-empty Error marks a degraded record.
	Error string

	// Fields holds format-specific scalar values (string, int64, float64, bool or nil).
	Fields map[string]any
}

// HasError reports whether the entry is a degraded record.
func (e *LogEntry) HasError() bool {
	return e.Error != ""
}

// Set stores a format-specific field value.
func (e *LogEntry) Set(name string, v any) {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[name] = v
}

// Get returns the value of a universal or format-specific field.
// A present field may hold nil.
func (e *LogEntry) Get(name string) (any, bool) {
	switch name {
	case FieldID:
		return e.ID, true
	case FieldTimestamp:
		return e.Timestamp, true
	case FieldOriginalLine:
		return e.OriginalLine, true
	case FieldMessage:
		return e.Message, true
	case FieldError:
		if e.Error == "" {
			return nil, false
		}
		return e.Error, true
	}
	v, ok := e.Fields[name]
	return v, ok
}

// String returns the string form of a field, or "" when absent or null.
func (e *LogEntry) String(name string) string {
	v, _ := e.Get(name)
	return Stringify(v)
}

// FieldNames lists the universal fields followed by the sorted format-specific fields.
func (e *LogEntry) FieldNames() []string {
	names := []string{FieldID, FieldTimestamp, FieldOriginalLine, FieldMessage}
	if e.Error != "" {
		names = append(names, FieldError)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return append(names, keys...)
}

// MarshalJSON renders the entry as a flat object in FieldNames order.
func (e LogEntry) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range e.FieldNames() {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, _ := e.Get(name)
		val, err := json.Marshal(JSONValue(v))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// reserved reports whether a name collides with a universal field.
func reserved(name string) bool {
	switch name {
	case FieldID, FieldTimestamp, FieldOriginalLine, FieldMessage, FieldError:
		return true
	}
	return false
}
