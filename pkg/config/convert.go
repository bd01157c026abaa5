package config

import (
	"time"

	"github.com/ccollicutt/loglens/pkg/export"
	"github.com/ccollicutt/loglens/pkg/parser"
	"github.com/ccollicutt/loglens/pkg/query"
)

// ParserConfig converts the parser section. It assumes a validated config.
func (c *Config) ParserConfig() parser.Config {
	return parser.Config{
		Format:        parser.Format(c.Parser.Format),
		Delimiter:     c.Parser.Delimiter,
		CustomRegex:   c.Parser.CustomRegex,
		Timezone:      c.Parser.Timezone,
		DateFormat:    c.Parser.DateFormat,
		SkipCSVHeader: c.Parser.SkipCSVHeader,
		AutoFallback:  parser.Format(c.Parser.AutoFallback),
		SampleSize:    c.Parser.SampleSize,
	}
}

// QueryView converts the view section.
func (c *Config) QueryView() query.View {
	dir, err := query.ParseDirection(c.View.SortDirection)
	if err != nil {
		dir = query.Asc
	}
	return query.View{
		SearchTerm:    c.View.Search,
		SortField:     c.View.SortField,
		SortDirection: dir,
		Page:          c.View.Page,
		PageSize:      c.View.PageSize,
	}
}

// ExportRequest converts the export section.
func (c *Config) ExportRequest() (export.Request, error) {
	format, err := export.ParseFormat(c.Export.Format)
	if err != nil {
		return export.Request{}, err
	}
	start, err := parseDate(c.Export.StartDate)
	if err != nil {
		return export.Request{}, err
	}
	end, err := parseDate(c.Export.EndDate)
	if err != nil {
		return export.Request{}, err
	}
	return export.Request{
		Fields: c.Export.Fields,
		Start:  start,
		End:    end,
		Format: format,
	}, nil
}

// ParseDate reads an inclusive export day in YYYY-MM-DD form. Empty yields nil.
func ParseDate(s string) (*time.Time, error) {
	return parseDate(s)
}
