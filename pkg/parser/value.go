package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the canonical rendering of an instant: UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var (
	numericToken = regexp.MustCompile(`^\d+(\.\d+)?$`)
	leadingInt   = regexp.MustCompile(`^\s*([+-]?\d+)`)
)

// FormatTimestamp renders t in canonical form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Stringify returns the display form of a field value. Nil renders as "".
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return FormatTimestamp(x)
	default:
		return fmt.Sprint(x)
	}
}

// JSONValue converts a field value to the form used in JSON output.
func JSONValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return FormatTimestamp(t)
	}
	return v
}

// ToNumber returns v as a float64 when it is a number or a pure decimal token.
func ToNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case string:
		if !numericToken.MatchString(x) {
			return 0, false
		}
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

// ToInt reads a leading integer the way a lenient integer parse would:
// numbers are truncated and strings use their leading digits.
func ToInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int64(x), true
	case string:
		m := leadingInt.FindStringSubmatch(x)
		if m == nil {
			return 0, false
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		return n, err == nil
	}
	return 0, false
}

// truthy reports whether v carries a usable value: not nil, "", zero or false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case int64:
		return x != 0
	case float64:
		return x != 0 && !math.IsNaN(x)
	case bool:
		return x
	}
	return true
}

// firstTruthy returns the first truthy value found under keys.
func firstTruthy(data map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := data[k]; ok && truthy(v) {
			return v, true
		}
	}
	return nil, false
}

// scalar flattens a decoded JSON value into a field value.
// Objects and arrays are kept as compact JSON text.
func scalar(v any) any {
	switch x := v.(type) {
	case nil, string, int64, float64, bool:
		return x
	case int:
		return int64(x)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

// intOrRaw converts v to int64 when it holds a leading integer, keeping v otherwise.
func intOrRaw(v any) any {
	if n, ok := ToInt(v); ok {
		return n
	}
	return v
}

// fieldKey moves names that collide with universal fields under a prefix.
func fieldKey(prefix, name string) string {
	if reserved(name) {
		return prefix + "_" + name
	}
	return name
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeHeader lower-cases a header and collapses whitespace to underscores.
func normalizeHeader(h string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "_")
}
