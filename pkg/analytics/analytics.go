// Package analytics computes summary statistics over a full set of log entries.
package analytics

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/ccollicutt/loglens/pkg/parser"
)

const (
	// DefaultTopN is the number of URLs reported in TopURLs.
	DefaultTopN = 7

	// MaxURLLabel is the display width of a URL label, including the ellipsis.
	MaxURLLabel = 30
)

// DateRange spans the earliest and latest entry timestamps.
type DateRange struct {
	Available bool      `json:"available"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// Count is a distinct value and how often it occurs.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// URLCount is a URL, its display label and how often it occurs.
type URLCount struct {
	URL   string `json:"url"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary holds the aggregate statistics of a dataset.
type Summary struct {
	TotalEntries    int        `json:"totalEntries"`
	DateRange       DateRange  `json:"dateRange"`
	UniqueIPCount   int        `json:"uniqueIPs"`
	ErrorRate       float64    `json:"errorRate"` // Percent of entries with status >= 400, one decimal
	HourlyHistogram [24]int    `json:"hourlyHistogram"`
	StatusBreakdown []Count    `json:"statusBreakdown"`
	MethodBreakdown []Count    `json:"methodBreakdown"`
	TopURLs         []URLCount `json:"topURLs"`
}

// Aggregator computes summaries.
type Aggregator struct {
	loc  *time.Location
	topN int
}

// Option configures the Aggregator.
type Option func(*Aggregator)

// WithLocation sets the zone used for hour-of-day buckets (default time.Local).
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithTopN sets how many URLs are reported (default 7).
func WithTopN(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.topN = n
		}
	}
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{loc: time.Local, topN: DefaultTopN}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize aggregates entries. Entries without a timestamp count toward
// TotalEntries and the breakdowns but not toward the time-based figures.
func (a *Aggregator) Summarize(entries []parser.LogEntry) *Summary {
	s := &Summary{TotalEntries: len(entries)}

	ips := make(map[string]struct{})
	status := newCounter()
	methods := newCounter()
	urls := newCounter()
	withTime, errors := 0, 0

	for i := range entries {
		e := &entries[i]

		if ip := e.String("ip"); ip != "" {
			ips[ip] = struct{}{}
		}
		if v, ok := e.Get("status"); ok && v != nil {
			status.add(parser.Stringify(v))
		}
		if v, ok := e.Get("method"); ok && v != nil {
			methods.add(strings.ToUpper(parser.Stringify(v)))
		}
		if v, ok := e.Get("url"); ok && v != nil {
			urls.add(parser.Stringify(v))
		}

		if e.Timestamp.IsZero() {
			continue
		}
		withTime++
		if !s.DateRange.Available || e.Timestamp.Before(s.DateRange.Start) {
			s.DateRange.Start = e.Timestamp
		}
		if !s.DateRange.Available || e.Timestamp.After(s.DateRange.End) {
			s.DateRange.End = e.Timestamp
		}
		s.DateRange.Available = true
		s.HourlyHistogram[e.Timestamp.In(a.loc).Hour()]++

		if v, ok := e.Get("status"); ok {
			if n, ok := parser.ToNumber(v); ok && n >= 400 {
				errors++
			}
		}
	}

	s.UniqueIPCount = len(ips)
	if withTime > 0 {
		s.ErrorRate = math.Round(float64(errors)/float64(withTime)*1000) / 10
	}
	s.StatusBreakdown = status.byNumericValue()
	s.MethodBreakdown = methods.counts()
	s.TopURLs = topURLs(urls.counts(), a.topN)

	return s
}

// topURLs keeps the n most frequent URLs. Ties keep first-seen order.
func topURLs(counts []Count, n int) []URLCount {
	slices.SortStableFunc(counts, func(a, b Count) int {
		return b.Count - a.Count
	})
	counts = counts[:min(n, len(counts))]

	out := make([]URLCount, len(counts))
	for i, c := range counts {
		out[i] = URLCount{URL: c.Value, Label: Truncate(c.Value, MaxURLLabel), Count: c.Count}
	}
	return out
}

// Truncate shortens s to width runes, ending in "..." when cut.
func Truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:max(width, 0)])
	}
	return string(r[:width-3]) + "..."
}

// counter counts values, remembering first-seen order.
type counter struct {
	order []string
	n     map[string]int
}

func newCounter() *counter {
	return &counter{n: make(map[string]int)}
}

// add counts v. Empty values are not counted.
func (c *counter) add(v string) {
	if v == "" {
		return
	}
	if _, ok := c.n[v]; !ok {
		c.order = append(c.order, v)
	}
	c.n[v]++
}

func (c *counter) counts() []Count {
	out := make([]Count, len(c.order))
	for i, v := range c.order {
		out[i] = Count{Value: v, Count: c.n[v]}
	}
	return out
}

// byNumericValue orders numeric values ascending, followed by the rest in first-seen order.
func (c *counter) byNumericValue() []Count {
	out := c.counts()
	slices.SortStableFunc(out, func(a, b Count) int {
		na, aNum := parser.ToNumber(a.Value)
		nb, bNum := parser.ToNumber(b.Value)
		switch {
		case aNum && bNum:
			if na < nb {
				return -1
			}
			if na > nb {
				return 1
			}
			return 0
		case aNum:
			return -1
		case bNum:
			return 1
		}
		return 0
	})
	return out
}
