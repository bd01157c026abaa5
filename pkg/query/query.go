// Package query filters, sorts and paginates parsed log entries.
// Every operation returns a new slice and leaves its input untouched.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ccollicutt/loglens/pkg/parser"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// DefaultPageSize is used when a page size is not positive.
const DefaultPageSize = 25

// ParseDirection converts a direction name. Matching is case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc, "":
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("invalid sort direction %q (must be asc or desc)", s)
}

// Filter returns the entries with any field value containing term,
// compared case-insensitively. An empty term returns a copy of entries.
func Filter(entries []parser.LogEntry, term string) []parser.LogEntry {
	if term == "" {
		return slices.Clone(entries)
	}
	needle := strings.ToLower(term)

	out := make([]parser.LogEntry, 0, len(entries))
	for i := range entries {
		if matches(&entries[i], needle) {
			out = append(out, entries[i])
		}
	}
	return out
}

func matches(e *parser.LogEntry, needle string) bool {
	for _, name := range e.FieldNames() {
		v, _ := e.Get(name)
		if v == nil {
			continue
		}
		if strings.Contains(strings.ToLower(parser.Stringify(v)), needle) {
			return true
		}
	}
	return false
}

// Sort returns entries stably ordered by field. Null or absent values sort
// last in both directions. An empty field returns a copy in input order.
func Sort(entries []parser.LogEntry, field string, dir Direction) []parser.LogEntry {
	out := slices.Clone(entries)
	if field == "" {
		return out
	}

	slices.SortStableFunc(out, func(a, b parser.LogEntry) int {
		va, _ := a.Get(field)
		vb, _ := b.Get(field)
		switch {
		case va == nil && vb == nil:
			return 0
		case va == nil:
			return 1
		case vb == nil:
			return -1
		}
		c := compareValues(va, vb)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

// compareValues orders two non-nil values: instants chronologically, numbers
// and pure numeric tokens numerically, anything else as lower-cased text.
func compareValues(a, b any) int {
	ta, aTime := a.(time.Time)
	tb, bTime := b.(time.Time)
	if aTime && bTime {
		return ta.Compare(tb)
	}

	na, aNum := parser.ToNumber(a)
	nb, bNum := parser.ToNumber(b)
	if aNum && bNum {
		return cmp.Compare(na, nb)
	}

	return strings.Compare(strings.ToLower(parser.Stringify(a)), strings.ToLower(parser.Stringify(b)))
}

// Page is one page of entries.
type Page struct {
	Entries    []parser.LogEntry
	Page       int // Clamped 1-based page number
	PageSize   int
	TotalPages int // At least 1
}

// Paginate returns page of entries. page is clamped into [1, TotalPages].
func Paginate(entries []parser.LogEntry, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := max((len(entries)+pageSize-1)/pageSize, 1)
	page = min(max(page, 1), totalPages)

	start := min((page-1)*pageSize, len(entries))
	end := min(page*pageSize, len(entries))

	return Page{
		Entries:    slices.Clone(entries[start:end]),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
