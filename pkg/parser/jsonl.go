package parser

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/ohler55/ojg/oj"
)

// jsonAliases maps normalized field names to the keys they are read from.
var jsonAliases = []struct {
	Field string
	Keys  []string
}{
	{"ip", []string{"ip", "clientIp"}},
	{"user", []string{"user", "userId"}},
	{"method", []string{"method"}},
	{"url", []string{"url", "path"}},
	{"status", []string{"status", "statusCode"}},
	{"size", []string{"size", "contentLength"}},
	{"level", []string{"level", "severity"}},
}

// JSONParser handles line-delimited JSON objects.
type JSONParser struct {
	norm *Normalizer
}

// NewJSONParser creates a JSON line parser.
func NewJSONParser(norm *Normalizer) *JSONParser {
	return &JSONParser{norm: norm}
}

// Format returns the format name.
func (p *JSONParser) Format() Format { return FormatJSON }

// Parse decodes one JSON object and spreads its keys into fields.
func (p *JSONParser) Parse(line string, index int) LogEntry {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return degraded(p.norm, line, index, "JSON parse error: "+err.Error())
	}
	// oj keeps integers as int64 but tolerates some malformed input, so it
	// only decodes lines that already passed the strict check above.
	v, err := oj.ParseString(line)
	if err != nil {
		return degraded(p.norm, line, index, "JSON parse error: "+err.Error())
	}
	data, ok := v.(map[string]any)
	if !ok {
		return degraded(p.norm, line, index, "JSON parse error: line is not an object")
	}

	entry := base(p.norm, line, index)
	for k, val := range data {
		if k == FieldTimestamp || k == FieldMessage {
			continue
		}
		entry.Set(fieldKey("json", k), scalar(val))
	}

	if ts, ok := firstTruthy(data, "timestamp", "time", "Timestamp", "Date"); ok {
		entry.Timestamp, _ = p.norm.NormalizeValue(ts)
	}

	for _, alias := range jsonAliases {
		val, ok := firstTruthy(data, alias.Keys...)
		if !ok {
			continue
		}
		if alias.Field == "status" || alias.Field == "size" {
			if n, ok := ToInt(val); ok {
				entry.Set(alias.Field, n)
			}
			continue
		}
		entry.Set(alias.Field, scalar(val))
	}

	if msg, ok := firstTruthy(data, "message", "msg"); ok {
		entry.Message = Stringify(scalar(msg))
	} else {
		entry.Message = compactJSON(line)
	}
	return entry
}

func compactJSON(line string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(strings.TrimSpace(line))); err != nil {
		return line
	}
	return buf.String()
}
