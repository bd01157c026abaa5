package query

import "github.com/ccollicutt/loglens/pkg/parser"

// View is the search, sort and page state applied to a dataset.
type View struct {
	SearchTerm    string
	SortField     string
	SortDirection Direction
	Page          int
	PageSize      int
}

// DefaultView sorts by timestamp ascending with 25 entries per page.
func DefaultView() View {
	return View{
		SortField:     parser.FieldTimestamp,
		SortDirection: Asc,
		Page:          1,
		PageSize:      DefaultPageSize,
	}
}

// Result is a view applied to a dataset.
type Result struct {
	Entries    []parser.LogEntry
	Page       int
	PageSize   int
	TotalPages int
	ShownCount int // Entries matching the search term
	TotalCount int // Entries in the dataset
}

// Apply filters, sorts and paginates entries, in that order.
func (v View) Apply(entries []parser.LogEntry) Result {
	filtered := Filter(entries, v.SearchTerm)
	sorted := Sort(filtered, v.SortField, v.SortDirection)
	page := Paginate(sorted, v.Page, v.PageSize)

	return Result{
		Entries:    page.Entries,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
		ShownCount: len(filtered),
		TotalCount: len(entries),
	}
}
