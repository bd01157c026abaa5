package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/loglens/pkg/analytics"
	"github.com/ccollicutt/loglens/pkg/config"
	"github.com/ccollicutt/loglens/pkg/parser"
	"github.com/ccollicutt/loglens/pkg/webhook"
)

// histogramWidth is the length of the longest hourly bar.
const histogramWidth = 40

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Bold(true).Width(16)
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// SummaryOptions holds command-line options for the summary command.
type SummaryOptions struct {
	Parser         ParserFlags
	Output         string
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand() *cobra.Command {
	opts := &SummaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary <log-file|-> [log-file...]",
		Short: "Summarize parsed entries",
		Long: `Parse log files and print aggregate statistics for each: total entries,
date range, unique IPs, error rate, hourly histogram, status and method
breakdowns and the most requested URLs.

Summaries can be posted to webhooks configured in the config file or
given with --webhook-url. Delivery failures are logged and never fail
the command.

Example:
  loglens summary access.log
  loglens summary -o json access.log
  loglens summary --webhook-url https://hooks.example.com/logs --webhook-trigger always access.log`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, args, opts)
		},
	}

	addParserFlags(cmd, &opts.Parser)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook URL to post the summary to")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for the webhook")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_errors", "When to post (on_errors|always|never)")

	return cmd
}

func runSummary(cmd *cobra.Command, args []string, opts *SummaryOptions) error {
	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	cfg, err := opts.Parser.resolve()
	if err != nil {
		return err
	}

	hooks, err := collectWebhooks(cfg, opts)
	if err != nil {
		return err
	}

	sources, err := loadSources(cmd, args, cfg)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()
	aggregator := analytics.New()
	client := webhook.NewClient(logger)

	for _, src := range sources {
		summary := aggregator.Summarize(src.Dataset.Entries)

		if opts.Output == "json" {
			err = writeSummaryJSON(out, src, summary)
		} else {
			err = writeSummaryText(out, src, summary)
		}
		if err != nil {
			return fmt.Errorf("writing output: %w", err)
		}

		if len(hooks) > 0 {
			payload := webhook.NewPayload(displayName(src.Path), src.Dataset, summary)
			client.Notify(ctx, hooks, payload)
		}
	}

	return nil
}

// collectWebhooks merges config file webhooks with the one given on the command line.
func collectWebhooks(cfg *config.Config, opts *SummaryOptions) ([]config.WebhookConfig, error) {
	hooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	hooks = append(hooks, cfg.Webhooks...)

	if opts.WebhookURL == "" {
		return hooks, nil
	}

	trigger := config.WebhookTrigger(opts.WebhookTrigger)
	switch trigger {
	case config.WebhookTriggerOnErrors, config.WebhookTriggerAlways, config.WebhookTriggerNever:
	case "":
		trigger = config.WebhookTriggerOnErrors
	default:
		return nil, fmt.Errorf("invalid webhook trigger %q (use on_errors, always or never)", opts.WebhookTrigger)
	}

	return append(hooks, config.WebhookConfig{
		Name:    "cli",
		URL:     opts.WebhookURL,
		Token:   opts.WebhookToken,
		Trigger: trigger,
		Timeout: config.DefaultWebhookTimeout,
	}), nil
}

// summaryOutput is the JSON document written per input.
type summaryOutput struct {
	Source     string             `json:"source"`
	RunID      string             `json:"run_id"`
	Format     string             `json:"format"`
	ErrorCount int                `json:"error_count"`
	Summary    *analytics.Summary `json:"summary"`
}

func writeSummaryJSON(w io.Writer, src source, summary *analytics.Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summaryOutput{
		Source:     displayName(src.Path),
		RunID:      src.Dataset.RunID.String(),
		Format:     string(src.Dataset.Format),
		ErrorCount: src.Dataset.ErrorCount(),
		Summary:    summary,
	})
}

func writeSummaryText(w io.Writer, src source, s *analytics.Summary) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("=== Log Summary: "+displayName(src.Path)+" ===") + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + " " + value + "\n")
	}

	format := string(src.Dataset.Format)
	if isFallback(src.Dataset) {
		format += " (fallback)"
	}
	row("Format:", format)
	row("Total entries:", fmt.Sprintf("%d", s.TotalEntries))
	if n := src.Dataset.ErrorCount(); n > 0 {
		row("Parse errors:", errStyle.Render(fmt.Sprintf("%d", n)))
	}
	if s.DateRange.Available {
		row("Date range:", parser.FormatTimestamp(s.DateRange.Start)+" - "+parser.FormatTimestamp(s.DateRange.End))
	} else {
		row("Date range:", "N/A")
	}
	row("Unique IPs:", fmt.Sprintf("%d", s.UniqueIPCount))
	row("Error rate:", fmt.Sprintf("%.1f%%", s.ErrorRate))

	writeCounts(&b, "Status codes", s.StatusBreakdown)
	writeCounts(&b, "Methods", s.MethodBreakdown)

	if len(s.TopURLs) > 0 {
		b.WriteString("\n" + titleStyle.Render("Top URLs") + "\n")
		for i, u := range s.TopURLs {
			fmt.Fprintf(&b, "  %2d. %-50s %d\n", i+1, u.Label, u.Count)
		}
	}

	writeHistogram(&b, s.HourlyHistogram)

	_, err := io.WriteString(w, b.String()+"\n")
	return err
}

func writeCounts(b *strings.Builder, title string, counts []analytics.Count) {
	if len(counts) == 0 {
		return
	}
	b.WriteString("\n" + titleStyle.Render(title) + "\n")
	for _, c := range counts {
		fmt.Fprintf(b, "  %-10s %d\n", c.Value, c.Count)
	}
}

func writeHistogram(b *strings.Builder, hours [24]int) {
	peak := 0
	for _, n := range hours {
		peak = max(peak, n)
	}
	if peak == 0 {
		return
	}

	b.WriteString("\n" + titleStyle.Render("Entries by hour") + "\n")
	for hour, n := range hours {
		bar := strings.Repeat("#", n*histogramWidth/peak)
		fmt.Fprintf(b, "  %02d:00 %s %d\n", hour, barStyle.Render(bar), n)
	}
}
