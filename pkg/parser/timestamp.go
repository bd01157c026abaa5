package parser

import (
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Clock returns the current instant. Injected so "now" is testable.
type Clock func() time.Time

// timestampLayout pairs a Go time layout with a readable name.
type timestampLayout struct {
	Name   string
	Layout string
}

// genericLayouts are tried in order by the generic date-time parse.
// Layouts without a zone are read as UTC.
var genericLayouts = []timestampLayout{
	{"ISO 8601 with timezone", time.RFC3339},
	{"ISO 8601 with compact offset", "2006-01-02T15:04:05Z0700"},
	{"ISO 8601", "2006-01-02T15:04:05"},
	{"ISO 8601 minutes", "2006-01-02T15:04"},
	{"Datetime with timezone", "2006-01-02 15:04:05Z07:00"},
	{"Datetime with compact offset", "2006-01-02 15:04:05 -0700"},
	{"Python logging", "2006-01-02 15:04:05,000"},
	{"Datetime (space-separated)", "2006-01-02 15:04:05"},
	{"Date only", "2006-01-02"},
	{"Slash datetime", "2006/01/02 15:04:05"},
	{"US date format (MM/DD/YYYY)", "01/02/2006 15:04:05"},
	{"US date", "01/02/2006"},
	{"RFC 1123 numeric zone", time.RFC1123Z},
	{"RFC 1123", time.RFC1123},
	{"RFC 850", time.RFC850},
	{"RFC 822 numeric zone", time.RFC822Z},
	{"RFC 822", time.RFC822},
	{"ANSI C", time.ANSIC},
	{"Unix date", time.UnixDate},
	{"Ruby date", time.RubyDate},
	{"Syslog with year", "Jan 2 2006 15:04:05"},
}

var clfTimestamp = regexp.MustCompile(`(\d{2})/(\w{3})/(\d{4}):(\d{2}:\d{2}:\d{2})\s*([+-]\d{4})`)

var monthNumbers = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04", "May": "05", "Jun": "06",
	"Jul": "07", "Aug": "08", "Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// Normalizer converts raw timestamp text into a canonical UTC instant.
type Normalizer struct {
	now    Clock
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer. A nil clock uses time.Now and a nil
// logger discards the advisory warnings.
func NewNormalizer(now Clock, logger *zap.Logger) *Normalizer {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{now: now, logger: logger}
}

// Now returns the current instant in canonical form.
func (n *Normalizer) Now() time.Time {
	return n.now().UTC().Truncate(time.Millisecond)
}

// Normalize resolves raw into an instant. The second result is false when
// nothing could be recovered, in which case the current instant is returned
// and an advisory warning is logged.
func (n *Normalizer) Normalize(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return n.Now(), false
	}

	if t, ok := parseGeneric(raw); ok {
		return t, true
	}

	if t, ok := parseCLF(raw); ok {
		return t, true
	}

	n.logger.Warn("could not parse timestamp, using current time", zap.String("raw", raw))
	return n.Now(), false
}

// NormalizeValue resolves a decoded field value. Numbers are read as Unix
// milliseconds; everything else goes through Normalize.
func (n *Normalizer) NormalizeValue(v any) (time.Time, bool) {
	switch x := v.(type) {
	case int64:
		return time.UnixMilli(x).UTC(), true
	case float64:
		return time.UnixMilli(int64(x)).UTC(), true
	case string:
		return n.Normalize(x)
	default:
		return n.Normalize(Stringify(v))
	}
}

func parseGeneric(raw string) (time.Time, bool) {
	for _, l := range genericLayouts {
		if t, err := time.Parse(l.Layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseCLF reads DD/Mon/YYYY:HH:MM:SS ±HHMM anywhere in raw.
func parseCLF(raw string) (time.Time, bool) {
	m := clfTimestamp.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := monthNumbers[m[2]]
	if !ok {
		return time.Time{}, false
	}
	iso := m[3] + "-" + month + "-" + m[1] + "T" + m[4] + m[5]
	t, err := time.Parse("2006-01-02T15:04:05-0700", iso)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
