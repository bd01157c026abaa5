package parser

import "fmt"

// New returns the LineParser for format. headers are only used by FormatCSV.
// FormatAuto must be resolved by the detector before calling New.
func New(format Format, cfg Config, norm *Normalizer, headers []string) (LineParser, error) {
	if norm == nil {
		norm = NewNormalizer(nil, nil)
	}

	switch format {
	case FormatCLF:
		return NewCLFParser(norm), nil
	case FormatCombined:
		p := NewCLFParser(norm)
		p.format = FormatCombined
		return p, nil
	case FormatJSON:
		return NewJSONParser(norm), nil
	case FormatApp:
		return NewAppLogParser(norm), nil
	case FormatCSV:
		return NewCSVParser(norm, cfg.Delimiter, headers), nil
	case FormatCustom:
		if cfg.CustomRegex == "" {
			return nil, ErrCustomRegexMissing
		}
		return NewCustomParser(norm, cfg.CustomRegex), nil
	case FormatRaw:
		return NewRawParser(norm), nil
	case FormatAuto:
		return nil, fmt.Errorf("format %q must be resolved before parsing", format)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}
