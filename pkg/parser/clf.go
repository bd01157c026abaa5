package parser

import "regexp"

// CLFPattern matches Common Log Format lines. The protocol and URL are optional.
const CLFPattern = `^(\S+) (\S+) (\S+) \[([^\]]+)\] "(\S+)\s*(\S*)\s*([^"]*)?" (\d{3}) (\d+|-)`

var clfLine = regexp.MustCompile(CLFPattern)

// CLFParser handles Apache/NGINX Common Log Format lines.
// Combined format lines are accepted too; their trailing fields are ignored.
type CLFParser struct {
	norm   *Normalizer
	format Format
}

// NewCLFParser creates a CLF parser.
func NewCLFParser(norm *Normalizer) *CLFParser {
	return &CLFParser{norm: norm, format: FormatCLF}
}

// Format returns the format name.
func (p *CLFParser) Format() Format { return p.format }

// Parse extracts the request fields from a CLF line.
func (p *CLFParser) Parse(line string, index int) LogEntry {
	m := clfLine.FindStringSubmatch(line)
	if m == nil {
		return degraded(p.norm, line, index, "CLF regex mismatch")
	}

	entry := base(p.norm, line, index)
	entry.Timestamp, _ = p.norm.Normalize(m[4])

	entry.Set("ip", m[1])
	entry.Set("ident", dashToNil(m[2]))
	entry.Set("user", dashToNil(m[3]))
	entry.Set("method", m[5])
	entry.Set("url", orDefault(m[6], "/"))
	entry.Set("protocol", orDefault(m[7], "HTTP/1.0"))

	status, _ := ToInt(m[8])
	entry.Set("status", status)

	var size int64
	if m[9] != "-" {
		size, _ = ToInt(m[9])
	}
	entry.Set("size", size)

	return entry
}

func dashToNil(s string) any {
	if s == "-" {
		return nil
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
