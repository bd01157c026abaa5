package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"clf", FormatCLF, false},
		{"JSON", FormatJSON, false},
		{" auto ", FormatAuto, false},
		{"raw", FormatRaw, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	for _, f := range Formats {
		assert.NotEqual(t, "Unknown format.", Describe(f), "format %s", f)
	}
	assert.Equal(t, "Unknown format.", Describe("xml"))
}

func TestNew(t *testing.T) {
	cfg := DefaultConfig()

	for _, f := range []Format{FormatCLF, FormatCombined, FormatJSON, FormatApp, FormatCSV, FormatRaw} {
		p, err := New(f, cfg, nil, nil)
		require.NoError(t, err, "New(%s)", f)
		assert.Equal(t, f, p.Format())
	}

	_, err := New(FormatCustom, cfg, nil, nil)
	assert.ErrorIs(t, err, ErrCustomRegexMissing)

	_, err = New(FormatAuto, cfg, nil, nil)
	assert.Error(t, err)

	_, err = New("xml", cfg, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestCLFParser_Parse(t *testing.T) {
	p := NewCLFParser(testNormalizer())

	line := `127.0.0.1 - frank [10/Oct/2023:13:55:36 +0000] "GET /apache_pb.gif HTTP/1.0" 200 2326`
	e := p.Parse(line, 1)

	assert.False(t, e.HasError())
	assert.Equal(t, 1, e.ID)
	assert.Equal(t, "2023-10-10T13:55:36.000Z", FormatTimestamp(e.Timestamp))
	assert.Equal(t, "127.0.0.1", e.Fields["ip"])
	assert.Nil(t, e.Fields["ident"])
	assert.Equal(t, "frank", e.Fields["user"])
	assert.Equal(t, "GET", e.Fields["method"])
	assert.Equal(t, "/apache_pb.gif", e.Fields["url"])
	assert.Equal(t, "HTTP/1.0", e.Fields["protocol"])
	assert.Equal(t, int64(200), e.Fields["status"])
	assert.Equal(t, int64(2326), e.Fields["size"])
	assert.Equal(t, line, e.Message)
	assert.Equal(t, line, e.OriginalLine)
}

func TestCLFParser_Defaults(t *testing.T) {
	p := NewCLFParser(testNormalizer())

	e := p.Parse(`10.0.0.1 - - [10/Oct/2023:13:55:36 +0000] "GET" 404 -`, 3)
	require.False(t, e.HasError(), e.Error)
	assert.Nil(t, e.Fields["user"])
	assert.Equal(t, "/", e.Fields["url"])
	assert.Equal(t, "HTTP/1.0", e.Fields["protocol"])
	assert.Equal(t, int64(0), e.Fields["size"])
}

func TestCLFParser_Combined(t *testing.T) {
	p, err := New(FormatCombined, DefaultConfig(), testNormalizer(), nil)
	require.NoError(t, err)

	e := p.Parse(`10.0.0.1 - - [10/Oct/2023:13:55:36 +0000] "POST /login HTTP/1.1" 302 12 "-" "curl/8.0"`, 1)
	require.False(t, e.HasError(), e.Error)
	assert.Equal(t, "POST", e.Fields["method"])
	assert.Equal(t, int64(302), e.Fields["status"])
}

func TestCLFParser_Mismatch(t *testing.T) {
	p := NewCLFParser(testNormalizer())

	e := p.Parse("this is not a clf line", 2)
	assert.Equal(t, "CLF regex mismatch", e.Error)
	assert.Equal(t, "this is not a clf line", e.Message)
	assert.True(t, fixedNow.Truncate(1e6).Equal(e.Timestamp))
}

func TestJSONParser_Parse(t *testing.T) {
	p := NewJSONParser(testNormalizer())

	e := p.Parse(`{"timestamp":"2023-10-10T13:56:15Z","ip":"192.168.1.100","status":302}`, 1)
	require.False(t, e.HasError(), e.Error)
	assert.Equal(t, int64(302), e.Fields["status"])
	assert.Equal(t, "192.168.1.100", e.Fields["ip"])
	assert.Equal(t, "2023-10-10T13:56:15.000Z", FormatTimestamp(e.Timestamp))
	assert.Equal(t, `{"timestamp":"2023-10-10T13:56:15Z","ip":"192.168.1.100","status":302}`, e.Message)
}

func TestJSONParser_Aliases(t *testing.T) {
	p := NewJSONParser(testNormalizer())

	e := p.Parse(`{"time":"2023-10-10T13:56:15Z","clientIp":"10.1.1.1","userId":"u1","path":"/x","statusCode":"503","contentLength":10,"severity":"warn","msg":"slow","id":"abc"}`, 4)
	require.False(t, e.HasError(), e.Error)
	assert.Equal(t, "10.1.1.1", e.Fields["ip"])
	assert.Equal(t, "u1", e.Fields["user"])
	assert.Equal(t, "/x", e.Fields["url"])
	assert.Equal(t, int64(503), e.Fields["status"])
	assert.Equal(t, int64(10), e.Fields["size"])
	assert.Equal(t, "warn", e.Fields["level"])
	assert.Equal(t, "slow", e.Message)
	// original keys are kept
	assert.Equal(t, "10.1.1.1", e.Fields["clientIp"])
	assert.Equal(t, "503", e.Fields["statusCode"])
	// universal names move aside
	assert.Equal(t, 4, e.ID)
	assert.Equal(t, "abc", e.Fields["json_id"])
}

func TestJSONParser_Nested(t *testing.T) {
	p := NewJSONParser(testNormalizer())

	e := p.Parse(`{"message":"ok","ctx":{"a":1}}`, 1)
	require.False(t, e.HasError())
	assert.Equal(t, `{"a":1}`, e.Fields["ctx"])
}

func TestJSONParser_Malformed(t *testing.T) {
	p := NewJSONParser(testNormalizer())

	e := p.Parse(`{"bad":}`, 1)
	assert.True(t, e.HasError())
	assert.True(t, strings.HasPrefix(e.Error, "JSON parse error: "), e.Error)
	assert.Equal(t, `{"bad":}`, e.Message)
	assert.True(t, fixedNow.Truncate(1e6).Equal(e.Timestamp))
}

func TestJSONParser_MalformedVariants(t *testing.T) {
	p := NewJSONParser(testNormalizer())

	for _, line := range []string{`{"bad":}`, `{"a":1,}`, `{"a" 1}`, `{"a":1}}`} {
		e := p.Parse(line, 1)
		assert.True(t, strings.HasPrefix(e.Error, "JSON parse error: "), "%s: %q", line, e.Error)
		assert.Equal(t, line, e.OriginalLine)
	}
}

func TestJSONParser_SizeIsInteger(t *testing.T) {
	p := NewJSONParser(testNormalizer())

	tests := []struct {
		line string
		want int64
	}{
		{`{"size":"2326"}`, 2326},
		{`{"contentLength":"512"}`, 512},
		{`{"contentLength":12.7}`, 12},
		{`{"size":40}`, 40},
	}
	for _, tt := range tests {
		e := p.Parse(tt.line, 1)
		require.False(t, e.HasError(), e.Error)
		assert.Equal(t, tt.want, e.Fields["size"], tt.line)
	}
}

func TestJSONParser_RoundTrip(t *testing.T) {
	clf := NewCLFParser(testNormalizer())
	orig := clf.Parse(`127.0.0.1 - frank [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/1.1" 200 512`, 1)

	b, err := json.Marshal(orig)
	require.NoError(t, err)

	back := NewJSONParser(testNormalizer()).Parse(string(b), 1)
	require.False(t, back.HasError(), back.Error)
	for _, field := range []string{"ip", "status", "method", "url"} {
		assert.Equal(t, orig.Fields[field], back.Fields[field], field)
	}
	assert.True(t, orig.Timestamp.Equal(back.Timestamp))
	assert.Equal(t, orig.Message, back.Message)
}

func TestAppLogParser_Parse(t *testing.T) {
	p := NewAppLogParser(testNormalizer())

	e := p.Parse("[2023-10-10 13:55:36] error: disk full ", 1)
	require.False(t, e.HasError(), e.Error)
	assert.Equal(t, "ERROR", e.Fields["level"])
	assert.Equal(t, "disk full", e.Message)
	assert.Equal(t, "2023-10-10T13:55:36.000Z", FormatTimestamp(e.Timestamp))

	e = p.Parse("[10/Oct/2023:13:55:36 +0000] INFO: started", 2)
	require.False(t, e.HasError(), e.Error)
	assert.Equal(t, "2023-10-10T13:55:36.000Z", FormatTimestamp(e.Timestamp))

	e = p.Parse("no brackets here", 3)
	assert.Equal(t, "App log regex mismatch", e.Error)
}

func TestCSVParser_Headers(t *testing.T) {
	headers := SplitHeaders("Timestamp, IP Address ,Status Code,Response Size,Description", ",")
	p := NewCSVParser(testNormalizer(), ",", headers)

	assert.Equal(t, []string{"timestamp", "ip_address", "status_code", "response_size", "description"}, p.Headers())

	e := p.Parse("2023-10-10T13:55:36Z,10.0.0.1,500,42,boom", 2)
	require.False(t, e.HasError())
	assert.Equal(t, "2023-10-10T13:55:36.000Z", FormatTimestamp(e.Timestamp))
	assert.Equal(t, "10.0.0.1", e.Fields["ip"])
	assert.Equal(t, int64(500), e.Fields["status"])
	assert.Equal(t, int64(42), e.Fields["size"])
	assert.Equal(t, "boom", e.Message)
	assert.Equal(t, "2023-10-10T13:55:36Z", e.Fields["csv_timestamp"])
}

func TestCSVParser_ArityMismatch(t *testing.T) {
	p := NewCSVParser(testNormalizer(), ";", []string{"a", "b"})

	e := p.Parse("x; y ;z", 1)
	assert.False(t, e.HasError())
	assert.Equal(t, "x; y ;z", e.Message)
	assert.Equal(t, "x", e.Fields["field_1"])
	assert.Equal(t, "y", e.Fields["field_2"])
	assert.Equal(t, "z", e.Fields["field_3"])
}

func TestCSVParser_QuotesNotInterpreted(t *testing.T) {
	p := NewCSVParser(testNormalizer(), ",", nil)

	e := p.Parse(`"a,b",c`, 1)
	assert.Equal(t, `"a`, e.Fields["field_1"])
	assert.Equal(t, `b"`, e.Fields["field_2"])
}

func TestCustomParser_Named(t *testing.T) {
	p := NewCustomParser(testNormalizer(), `^(?P<time>\S+) (?P<ip>\S+) (?P<message>.*)$`)

	e := p.Parse("2023-10-10T13:55:36Z 10.0.0.9 user logged in", 1)
	require.False(t, e.HasError(), e.Error)
	assert.Equal(t, "10.0.0.9", e.Fields["ip"])
	assert.Equal(t, "user logged in", e.Message)
	assert.Equal(t, "2023-10-10T13:55:36.000Z", FormatTimestamp(e.Timestamp))
}

func TestCustomParser_Unnamed(t *testing.T) {
	p := NewCustomParser(testNormalizer(), `^(\S+) (\w+)(?: (\d+))?`)

	e := p.Parse("2023-10-10 ok", 1)
	require.False(t, e.HasError(), e.Error)
	assert.Equal(t, "2023-10-10", e.Fields["group1"])
	assert.Equal(t, "ok", e.Fields["group2"])
	assert.Nil(t, e.Fields["group3"])
	assert.Equal(t, "2023-10-10T00:00:00.000Z", FormatTimestamp(e.Timestamp))
	assert.Equal(t, "2023-10-10 ok", e.Message)
}

func TestCustomParser_Errors(t *testing.T) {
	norm := testNormalizer()

	e := NewCustomParser(norm, `(`).Parse("x", 1)
	assert.True(t, strings.HasPrefix(e.Error, "Custom regex error: "), e.Error)

	e = NewCustomParser(norm, `^\d+$`).Parse("abc", 1)
	assert.Equal(t, "Custom regex mismatch", e.Error)

	e = NewCustomParser(norm, "").Parse("abc", 1)
	assert.Equal(t, "Custom regex not provided", e.Error)
	assert.Equal(t, "abc", e.Message)
}

func TestRawParser_Parse(t *testing.T) {
	e := NewRawParser(testNormalizer()).Parse("anything at all", 7)
	assert.False(t, e.HasError())
	assert.Equal(t, 7, e.ID)
	assert.Equal(t, "anything at all", e.Message)
}

func TestLogEntry_MarshalJSON(t *testing.T) {
	e := LogEntry{ID: 1, Timestamp: fixedNow, OriginalLine: "l", Message: "m"}
	e.Set("status", int64(200))
	e.Set("user", nil)

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"timestamp":"2024-03-01T12:00:00.123Z","originalLine":"l","message":"m","status":200,"user":null}`, string(b))

	e.Error = "oops"
	assert.Equal(t, []string{"id", "timestamp", "originalLine", "message", "error", "status", "user"}, e.FieldNames())
}
