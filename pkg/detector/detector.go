// Package detector picks a log format for input whose format is "auto".
package detector

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ohler55/ojg/oj"
	"go.uber.org/zap"

	"github.com/ccollicutt/loglens/pkg/parser"
)

// Result holds the outcome of format detection.
type Result struct {
	Format       parser.Format // Selected format
	Fallback     bool          // True when no rule matched and the fallback format was used
	Reason       string        // Which rule selected the format
	SampledLines int           // Number of lines inspected
	Matches      []ShapeMatch  // Per-shape match counts over the sample, for reporting
}

// ShapeMatch reports how many sampled lines a shape matched.
type ShapeMatch struct {
	Shape      *LineShape
	MatchCount int
	Confidence float64 // 0.0 to 1.0 (fraction of sampled lines matched)
}

// Detector selects a parser format from a sample of lines.
type Detector struct {
	shapes     []*LineShape
	sampleSize int
	fallback   parser.Format
	logger     *zap.Logger
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithFallback sets the format used when nothing matches (default clf).
func WithFallback(f parser.Format) Option {
	return func(d *Detector) {
		if f != "" {
			d.fallback = f
		}
	}
}

// WithLogger sets the logger used for the fallback advisory.
func WithLogger(l *zap.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a new Detector with default shapes.
func New(opts ...Option) *Detector {
	d := &Detector{
		shapes:     DefaultShapes(),
		sampleSize: 100,
		fallback:   parser.FormatCLF,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a log file and detects its format.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*Result, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.Detect(lines), nil
}

// Detect selects a format for lines. Blank lines are ignored. The rules are
// applied in order: every line is valid JSON, the first line is CLF,
// the first line is an application log. Otherwise the fallback is used and
// the result is flagged, since that is a default and not a detection.
func (d *Detector) Detect(lines []string) *Result {
	sample := make([]string, 0, min(len(lines), d.sampleSize))
	for _, line := range lines {
		if len(sample) >= d.sampleSize {
			break
		}
		if strings.TrimSpace(line) != "" {
			sample = append(sample, line)
		}
	}

	result := &Result{SampledLines: len(sample)}
	result.Matches = d.countMatches(sample)

	switch {
	case len(sample) > 0 && allJSON(lines):
		result.Format = parser.FormatJSON
		result.Reason = "every line is valid JSON"
	case len(sample) > 0 && d.firstMatch(sample[0]) != nil:
		shape := d.firstMatch(sample[0])
		result.Format = shape.Format
		result.Reason = fmt.Sprintf("first line matches %s", shape.Name)
	default:
		result.Format = d.fallback
		result.Fallback = true
		result.Reason = fmt.Sprintf("no format matched; using fallback %s", d.fallback)
		d.logger.Warn("format detection found no match, using fallback",
			zap.String("fallback", string(d.fallback)),
			zap.Int("sampled_lines", len(sample)))
	}

	return result
}

func (d *Detector) firstMatch(line string) *LineShape {
	for _, s := range d.shapes {
		if s.Pattern.MatchString(line) {
			return s
		}
	}
	return nil
}

func (d *Detector) countMatches(sample []string) []ShapeMatch {
	if len(sample) == 0 {
		return nil
	}
	matches := make([]ShapeMatch, 0, len(d.shapes))
	for _, s := range d.shapes {
		n := 0
		for _, line := range sample {
			if s.Pattern.MatchString(line) {
				n++
			}
		}
		matches = append(matches, ShapeMatch{
			Shape:      s,
			MatchCount: n,
			Confidence: float64(n) / float64(len(sample)),
		})
	}
	return matches
}

// allJSON reports whether every non-blank line is valid JSON.
func allJSON(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			return false
		}
		if _, err := oj.ParseString(line); err != nil {
			return false
		}
	}
	return true
}

// sampleFile reads up to sampleSize non-empty lines from a file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() && len(lines) < d.sampleSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// BestMatch returns the shape with the most matches, or nil if none matched.
func (r *Result) BestMatch() *ShapeMatch {
	var best *ShapeMatch
	for i := range r.Matches {
		m := &r.Matches[i]
		if m.MatchCount > 0 && (best == nil || m.MatchCount > best.MatchCount) {
			best = m
		}
	}
	return best
}
