package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/loglens/pkg/detector"
	"github.com/ccollicutt/loglens/pkg/parser"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output     string
	SampleSize int
	Fallback   string
	ShowAll    bool
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect the format of a log file",
		Long: `Sample a log file and report which format auto detection selects.

Detection rules, in order:
  - every line is valid JSON: json
  - the first line looks like Apache/NGINX common log format: clf
  - the first line looks like "[TIMESTAMP] LEVEL: MESSAGE": app
  - otherwise the fallback format is used and reported as a fallback

Example:
  loglens detect /var/log/nginx/access.log
  loglens detect --sample 500 --all app.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 0, "Number of lines to sample (default from config: 100)")
	cmd.Flags().StringVar(&opts.Fallback, "fallback", "", "Format used when nothing matches (clf|raw)")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show match counts for every known line shape")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	logFile := args[0]

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	sampleSize := current.Parser.SampleSize
	if opts.SampleSize > 0 {
		sampleSize = opts.SampleSize
	}
	fallback := current.Parser.AutoFallback
	if opts.Fallback != "" {
		fallback = opts.Fallback
	}
	if fallback != string(parser.FormatCLF) && fallback != string(parser.FormatRaw) {
		return fmt.Errorf("invalid fallback %q (use clf or raw)", fallback)
	}

	d := detector.New(
		detector.WithSampleSize(sampleSize),
		detector.WithFallback(parser.Format(fallback)),
		detector.WithLogger(logger),
	)

	result, err := d.DetectFromFile(commandContext(cmd), logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(cmd.OutOrStdout(), result, logFile, opts)
	case "text":
		return outputDetectText(cmd.OutOrStdout(), result, logFile, opts)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputDetectText(w io.Writer, result *detector.Result, logFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Log Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Detected Format: %s\n", result.Format)
	if result.Fallback {
		fmt.Fprintln(w, "WARNING: no format matched; this is the fallback, not a detection.")
	}
	fmt.Fprintf(w, "Reason: %s\n", result.Reason)
	fmt.Fprintf(w, "Description: %s\n", parser.Describe(result.Format))
	fmt.Fprintln(w)

	if best := result.BestMatch(); best != nil {
		fmt.Fprintf(w, "Most common line shape: %s (%.1f%%, %d/%d lines)\n",
			best.Shape.Name, best.Confidence*100, best.MatchCount, result.SampledLines)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "--- Configuration snippet ---")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "parser:")
	fmt.Fprintf(w, "  format: %s\n", result.Format)
	fmt.Fprintln(w)

	if opts.ShowAll {
		fmt.Fprintln(w, "--- Line shapes ---")
		for i, m := range result.Matches {
			fmt.Fprintf(w, "%d. %s: %d/%d lines (%.1f%%)\n",
				i+1, m.Shape.Name, m.MatchCount, result.SampledLines, m.Confidence*100)
			fmt.Fprintf(w, "   pattern: '%s'\n", m.Shape.PatternStr)
			fmt.Fprintf(w, "   example: %s\n", m.Shape.Example)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// DetectJSONMatch represents a line shape in JSON output.
type DetectJSONMatch struct {
	Name       string  `json:"name"`
	Format     string  `json:"format"`
	Pattern    string  `json:"pattern"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
}

// DetectJSONOutput represents the full JSON output.
type DetectJSONOutput struct {
	File         string            `json:"file"`
	Format       string            `json:"format"`
	Fallback     bool              `json:"fallback"`
	Reason       string            `json:"reason"`
	Description  string            `json:"description"`
	SampledLines int               `json:"sampled_lines"`
	Matches      []DetectJSONMatch `json:"matches,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.Result, logFile string, opts *DetectOptions) error {
	output := DetectJSONOutput{
		File:         logFile,
		Format:       string(result.Format),
		Fallback:     result.Fallback,
		Reason:       result.Reason,
		Description:  parser.Describe(result.Format),
		SampledLines: result.SampledLines,
	}

	if opts.ShowAll {
		for _, m := range result.Matches {
			output.Matches = append(output.Matches, DetectJSONMatch{
				Name:       m.Shape.Name,
				Format:     string(m.Shape.Format),
				Pattern:    m.Shape.PatternStr,
				Confidence: m.Confidence,
				MatchCount: m.MatchCount,
			})
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
