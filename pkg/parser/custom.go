package parser

import (
	"regexp"
	"strconv"
)

// CustomParser matches lines against a user-supplied regular expression.
// Named groups become fields by name; unnamed groups become group1, group2, ...
type CustomParser struct {
	norm    *Normalizer
	pattern string
	re      *regexp.Regexp
	err     error
}

// NewCustomParser compiles pattern once. An invalid pattern does not fail
// construction; every parsed line carries the compile error instead.
func NewCustomParser(norm *Normalizer, pattern string) *CustomParser {
	p := &CustomParser{norm: norm, pattern: pattern}
	if pattern == "" {
		p.err = ErrCustomRegexMissing
		return p
	}
	p.re, p.err = regexp.Compile(pattern)
	return p
}

// Format returns the format name.
func (p *CustomParser) Format() Format { return FormatCustom }

// Err returns the pattern compile error, if any.
func (p *CustomParser) Err() error { return p.err }

// Parse matches line and maps the captured groups to fields.
func (p *CustomParser) Parse(line string, index int) LogEntry {
	if p.err == ErrCustomRegexMissing {
		return degraded(p.norm, line, index, ErrCustomRegexMissing.Error())
	}
	if p.err != nil {
		return degraded(p.norm, line, index, "Custom regex error: "+p.err.Error())
	}

	loc := p.re.FindStringSubmatchIndex(line)
	if loc == nil {
		return degraded(p.norm, line, index, "Custom regex mismatch")
	}

	entry := base(p.norm, line, index)
	named := make(map[string]any)
	hasNamed := false
	for i, name := range p.re.SubexpNames() {
		if i == 0 {
			continue
		}
		var val any
		if loc[2*i] >= 0 {
			val = line[loc[2*i]:loc[2*i+1]]
		}
		if name == "" {
			entry.Set(fieldName("group", i), val)
			continue
		}
		hasNamed = true
		named[name] = val
		if name != FieldMessage {
			entry.Set(fieldKey("custom", name), val)
		}
	}

	tsKeys := []string{"timestamp", "time", "date"}
	src := named
	if !hasNamed {
		tsKeys = []string{"group1"}
		src = entry.Fields
	}
	if ts, ok := firstTruthy(src, tsKeys...); ok {
		entry.Timestamp, _ = p.norm.NormalizeValue(ts)
	}

	if msg, ok := firstTruthy(named, "message", "msg"); ok {
		entry.Message = Stringify(msg)
	}
	return entry
}

func fieldName(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}
