package parser

// RawParser keeps each line as an unstructured message.
type RawParser struct {
	norm *Normalizer
}

// NewRawParser creates a raw line parser.
func NewRawParser(norm *Normalizer) *RawParser {
	return &RawParser{norm: norm}
}

// Format returns the format name.
func (p *RawParser) Format() Format { return FormatRaw }

// Parse returns the line as the message, stamped with the current time.
func (p *RawParser) Parse(line string, index int) LogEntry {
	return base(p.norm, line, index)
}
