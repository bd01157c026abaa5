package parser

import "strings"

// CSVParser splits delimited lines. Quotes and escaped delimiters are not
// interpreted: a delimiter inside a quoted value still splits it.
type CSVParser struct {
	norm      *Normalizer
	delimiter string
	headers   []string
}

// NewCSVParser creates a delimited-values parser. headers holds the raw
// header row values; they are normalized before use.
func NewCSVParser(norm *Normalizer, delimiter string, headers []string) *CSVParser {
	if delimiter == "" {
		delimiter = ","
	}
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}
	return &CSVParser{norm: norm, delimiter: delimiter, headers: normalized}
}

// SplitHeaders splits a header row using the parser's delimiter rules.
func SplitHeaders(line, delimiter string) []string {
	if delimiter == "" {
		delimiter = ","
	}
	parts := strings.Split(line, delimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Format returns the format name.
func (p *CSVParser) Format() Format { return FormatCSV }

// Headers returns the normalized header names.
func (p *CSVParser) Headers() []string { return p.headers }

// Parse maps the values of one line onto the headers.
func (p *CSVParser) Parse(line string, index int) LogEntry {
	values := SplitHeaders(line, p.delimiter)
	entry := base(p.norm, line, index)

	if len(p.headers) == 0 || len(p.headers) != len(values) {
		for i, v := range values {
			entry.Set(fieldName("field_", i+1), v)
		}
		return entry
	}

	row := make(map[string]any, len(values))
	for i, h := range p.headers {
		row[h] = values[i]
		if h == FieldMessage {
			continue
		}
		entry.Set(fieldKey("csv", h), values[i])
	}

	if ts, ok := firstTruthy(row, "timestamp", "time", "date"); ok {
		entry.Timestamp, _ = p.norm.NormalizeValue(ts)
	}
	if ip, ok := firstTruthy(row, "ip", "ip_address", "client_ip"); ok {
		entry.Set("ip", ip)
	}
	if status, ok := firstTruthy(row, "status", "status_code"); ok {
		entry.Set("status", intOrRaw(status))
	}
	if size, ok := firstTruthy(row, "size", "response_size"); ok {
		entry.Set("size", intOrRaw(size))
	}
	if msg, ok := firstTruthy(row, "message", "description"); ok {
		entry.Message = Stringify(msg)
	}
	return entry
}
