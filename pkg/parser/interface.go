package parser

// LineParser maps one raw line and its 1-based index to a LogEntry.
// Implementations never fail: problems are recorded in LogEntry.Error and
// the universal fields still carry best-effort values.
// Parse must not mutate parser state so lines can be parsed in any order.
type LineParser interface {
	// Parse converts a single line into a LogEntry with ID index.
	Parse(line string, index int) LogEntry

	// Format returns the format this parser handles.
	Format() Format
}

// degraded builds a fallback entry for a line that could not be parsed.
func degraded(norm *Normalizer, line string, index int, reason string) LogEntry {
	return LogEntry{
		ID:           index,
		Timestamp:    norm.Now(),
		OriginalLine: line,
		Message:      line,
		Error:        reason,
		Fields:       map[string]any{},
	}
}

// base builds an entry with the universal fields defaulted.
func base(norm *Normalizer, line string, index int) LogEntry {
	return LogEntry{
		ID:           index,
		Timestamp:    norm.Now(),
		OriginalLine: line,
		Message:      line,
		Fields:       map[string]any{},
	}
}
