package parser

import (
	"regexp"
	"strings"
)

// AppLogPattern matches "[TIMESTAMP] LEVEL: MESSAGE" lines.
const AppLogPattern = `(?i)^\[([^\]]+)\]\s*([A-Z]+)\s*:\s*(.*)`

var appLine = regexp.MustCompile(AppLogPattern)

// AppLogParser handles bracketed application log lines.
type AppLogParser struct {
	norm *Normalizer
}

// NewAppLogParser creates an application log parser.
func NewAppLogParser(norm *Normalizer) *AppLogParser {
	return &AppLogParser{norm: norm}
}

// Format returns the format name.
func (p *AppLogParser) Format() Format { return FormatApp }

// Parse extracts timestamp, level and message.
func (p *AppLogParser) Parse(line string, index int) LogEntry {
	m := appLine.FindStringSubmatch(line)
	if m == nil {
		return degraded(p.norm, line, index, "App log regex mismatch")
	}

	entry := base(p.norm, line, index)
	entry.Timestamp, _ = p.norm.Normalize(m[1])
	entry.Set("level", strings.ToUpper(m[2]))
	entry.Message = strings.TrimSpace(m[3])
	return entry
}
