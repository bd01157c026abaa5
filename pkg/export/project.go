package export

import (
	"time"

	"github.com/ccollicutt/loglens/pkg/parser"
)

// Project applies the date range of req to entries and maps each survivor
// to a Record. With no fields selected every field of the entry is kept.
// A selected field the entry lacks is exported as nil.
func Project(entries []parser.LogEntry, req Request) []Record {
	var start, end time.Time
	if req.Start != nil {
		start = dayStart(*req.Start)
	}
	if req.End != nil {
		end = dayStart(*req.End).Add(24*time.Hour - time.Millisecond)
	}

	records := make([]Record, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if req.Start != nil && e.Timestamp.Before(start) {
			continue
		}
		if req.End != nil && e.Timestamp.After(end) {
			continue
		}
		records = append(records, project(e, req.Fields))
	}
	return records
}

func project(e *parser.LogEntry, fields []string) Record {
	if len(fields) == 0 {
		fields = e.FieldNames()
	}
	r := Record{
		Keys:   make([]string, len(fields)),
		Values: make([]any, len(fields)),
	}
	for i, f := range fields {
		r.Keys[i] = f
		r.Values[i], _ = e.Get(f)
	}
	return r
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
