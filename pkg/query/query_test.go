package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/loglens/pkg/parser"
)

func entry(id int, fields map[string]any) parser.LogEntry {
	e := parser.LogEntry{
		ID:           id,
		Timestamp:    time.Date(2023, 10, 10, 13, 0, id, 0, time.UTC),
		OriginalLine: "line",
		Message:      "msg",
		Fields:       map[string]any{},
	}
	for k, v := range fields {
		e.Set(k, v)
	}
	return e
}

func ids(entries []parser.LogEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("DESC")
	require.NoError(t, err)
	assert.Equal(t, Desc, d)

	d, err = ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Asc, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	entries := []parser.LogEntry{
		entry(1, map[string]any{"url": "/Login"}),
		entry(2, map[string]any{"url": "/home", "status": int64(404)}),
		entry(3, map[string]any{"user": nil}),
	}

	assert.Equal(t, []int{1}, ids(Filter(entries, "login")))
	assert.Equal(t, []int{2}, ids(Filter(entries, "404")))
	assert.Equal(t, []int{1, 2, 3}, ids(Filter(entries, "MSG")))
	assert.Equal(t, []int{1, 2, 3}, ids(Filter(entries, "")))
	// null values never match
	assert.Empty(t, Filter(entries, "nil"))
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	entries := []parser.LogEntry{
		entry(1, map[string]any{"url": "/a"}),
		entry(2, map[string]any{"url": "/b"}),
	}

	got := Filter(entries, "no such value")

	assert.Empty(t, got)
	assert.Equal(t, []int{1, 2}, ids(entries))

	all := Filter(entries, "")
	all[0].ID = 99
	assert.Equal(t, 1, entries[0].ID)
}

func TestSort_Numeric(t *testing.T) {
	entries := []parser.LogEntry{
		entry(1, map[string]any{"status": int64(500)}),
		entry(2, map[string]any{"status": "200"}),
		entry(3, map[string]any{"status": int64(404)}),
	}

	assert.Equal(t, []int{2, 3, 1}, ids(Sort(entries, "status", Asc)))
	assert.Equal(t, []int{1, 3, 2}, ids(Sort(entries, "status", Desc)))
}

func TestSort_NumericTokensOnly(t *testing.T) {
	// "10a" is not a pure numeric token, so the pair compares as text
	entries := []parser.LogEntry{
		entry(1, map[string]any{"v": "9"}),
		entry(2, map[string]any{"v": "10a"}),
	}

	assert.Equal(t, []int{2, 1}, ids(Sort(entries, "v", Asc)))
}

func TestSort_CaseInsensitiveStrings(t *testing.T) {
	entries := []parser.LogEntry{
		entry(1, map[string]any{"method": "post"}),
		entry(2, map[string]any{"method": "GET"}),
		entry(3, map[string]any{"method": "Delete"}),
	}

	assert.Equal(t, []int{3, 2, 1}, ids(Sort(entries, "method", Asc)))
}

func TestSort_NullsLastBothDirections(t *testing.T) {
	entries := []parser.LogEntry{
		entry(1, map[string]any{"user": nil}),
		entry(2, map[string]any{"user": "bob"}),
		entry(3, nil),
		entry(4, map[string]any{"user": "alice"}),
	}

	assert.Equal(t, []int{4, 2, 1, 3}, ids(Sort(entries, "user", Asc)))
	assert.Equal(t, []int{2, 4, 1, 3}, ids(Sort(entries, "user", Desc)))
}

func TestSort_Stable(t *testing.T) {
	entries := []parser.LogEntry{
		entry(1, map[string]any{"level": "INFO"}),
		entry(2, map[string]any{"level": "ERROR"}),
		entry(3, map[string]any{"level": "INFO"}),
		entry(4, map[string]any{"level": "ERROR"}),
	}

	assert.Equal(t, []int{2, 4, 1, 3}, ids(Sort(entries, "level", Asc)))
	assert.Equal(t, []int{1, 3, 2, 4}, ids(Sort(entries, "level", Desc)))
}

func TestSort_Timestamp(t *testing.T) {
	entries := []parser.LogEntry{entry(3, nil), entry(1, nil), entry(2, nil)}

	assert.Equal(t, []int{1, 2, 3}, ids(Sort(entries, parser.FieldTimestamp, Asc)))
	assert.Equal(t, []int{3, 2, 1}, ids(Sort(entries, parser.FieldTimestamp, Desc)))
	// input order is untouched
	assert.Equal(t, []int{3, 1, 2}, ids(entries))
}

func TestPaginate(t *testing.T) {
	var entries []parser.LogEntry
	for i := 1; i <= 7; i++ {
		entries = append(entries, entry(i, nil))
	}

	tests := []struct {
		name      string
		page      int
		size      int
		wantIDs   []int
		wantPage  int
		wantTotal int
	}{
		{"first", 1, 3, []int{1, 2, 3}, 1, 3},
		{"last partial", 3, 3, []int{7}, 3, 3},
		{"beyond range clamps", 9, 3, []int{7}, 3, 3},
		{"below range clamps", 0, 3, []int{1, 2, 3}, 1, 3},
		{"default size", 1, 0, []int{1, 2, 3, 4, 5, 6, 7}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(entries, tt.page, tt.size)
			assert.Equal(t, tt.wantIDs, ids(p.Entries))
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantTotal, p.TotalPages)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate(nil, 5, 10)

	assert.Empty(t, p.Entries)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.TotalPages)
}

func TestView_Apply(t *testing.T) {
	entries := []parser.LogEntry{
		entry(1, map[string]any{"status": int64(200), "url": "/api/a"}),
		entry(2, map[string]any{"status": int64(500), "url": "/api/b"}),
		entry(3, map[string]any{"status": int64(404), "url": "/static"}),
		entry(4, map[string]any{"status": int64(301), "url": "/api/c"}),
	}

	v := View{SearchTerm: "/api", SortField: "status", SortDirection: Desc, Page: 1, PageSize: 2}
	r := v.Apply(entries)

	assert.Equal(t, []int{2, 4}, ids(r.Entries))
	assert.Equal(t, 3, r.ShownCount)
	assert.Equal(t, 4, r.TotalCount)
	assert.Equal(t, 2, r.TotalPages)
}

func TestDefaultView(t *testing.T) {
	v := DefaultView()
	assert.Equal(t, parser.FieldTimestamp, v.SortField)
	assert.Equal(t, Asc, v.SortDirection)
	assert.Equal(t, 25, v.PageSize)
}
