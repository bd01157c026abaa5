package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/loglens/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a LogLens configuration file without parsing any logs.

Checks:
  - YAML syntax
  - Parser format, delimiter and custom regex
  - View sort direction and page size
  - Export format and date range
  - Logging level and format
  - Webhook URLs and triggers`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(commandContext(cmd), configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Parser format: %s\n", cfg.Parser.Format)
	if cfg.Parser.Format == "csv" {
		fmt.Fprintf(out, "  Delimiter:     %q\n", cfg.Parser.Delimiter)
	}
	if cfg.Parser.Format == "auto" {
		fmt.Fprintf(out, "  Fallback:      %s\n", cfg.Parser.AutoFallback)
	}
	fmt.Fprintf(out, "  Sort:          %s %s\n", cfg.View.SortField, cfg.View.SortDirection)
	fmt.Fprintf(out, "  Page size:     %d\n", cfg.View.PageSize)
	fmt.Fprintf(out, "  Export format: %s\n", cfg.Export.Format)
	fmt.Fprintf(out, "  Webhooks:      %d\n", len(cfg.Webhooks))

	for i, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		trigger := wh.Trigger
		if trigger == "" {
			trigger = config.WebhookTriggerOnErrors
		}
		fmt.Fprintf(out, "    %d. %s [%s]\n", i+1, name, trigger)
	}

	return nil
}
