package detector

import (
	"regexp"

	"github.com/ccollicutt/loglens/pkg/parser"
)

// LineShape is a line format recognized by pattern during detection.
type LineShape struct {
	Format     parser.Format  // Format selected when the shape matches
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex (set during init)
	PatternStr string         // Pattern string for display
	Example    string         // Example line
}

// DefaultShapes returns the pattern-recognized formats in decision order.
// JSON is not listed: it is recognized by decoding, not by pattern.
func DefaultShapes() []*LineShape {
	shapes := []*LineShape{
		{
			Format:     parser.FormatCLF,
			Name:       "Apache/NGINX CLF",
			PatternStr: parser.CLFPattern,
			Example:    `127.0.0.1 - frank [10/Oct/2023:13:55:36 +0000] "GET /apache_pb.gif HTTP/1.0" 200 2326`,
		},
		{
			Format:     parser.FormatApp,
			Name:       "Application log",
			PatternStr: parser.AppLogPattern,
			Example:    "[2023-10-10 13:55:36] ERROR: connection refused",
		},
	}

	for _, s := range shapes {
		s.Pattern = regexp.MustCompile(s.PatternStr)
	}

	return shapes
}
