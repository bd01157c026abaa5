package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/loglens/pkg/config"
)

// ConfigInitOptions holds command-line options for the config init command.
type ConfigInitOptions struct {
	Format string
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}
	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	opts := &ConfigInitOptions{}

	cmd := &cobra.Command{
		Use:   "init <config-file>",
		Short: "Write a starter configuration file",
		Long: `Write a configuration file holding every default value.

An existing file is never overwritten.

Example:
  loglens config init loglens.yaml
  loglens config init --format csv csv.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "", "Parser format to write (default auto)")

	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string, opts *ConfigInitOptions) error {
	path := args[0]

	cfg := config.DefaultConfig()
	if opts.Format != "" {
		cfg.Parser.Format = opts.Format
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := config.Write(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote starter config to: %s\n", path)
	return nil
}
