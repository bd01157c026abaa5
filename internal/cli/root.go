// Package cli provides the command-line interface for LogLens.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ccollicutt/loglens/internal/cli/commands"
	"github.com/ccollicutt/loglens/internal/logging"
	"github.com/ccollicutt/loglens/pkg/config"
)

// EnvPrefix prefixes the environment variables bound to persistent flags,
// e.g. LOGLENS_CONFIG and LOGLENS_LOG_FORMAT.
const EnvPrefix = "LOGLENS"

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root command with all subcommands.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	var closeLog func() error

	rootCmd := &cobra.Command{
		Use:   "loglens",
		Short: "Parse, search, summarize and export log files",
		Long: `LogLens parses log files in common formats into normalized entries.

Supported formats: Apache/NGINX common and combined log format, JSON lines,
delimited values with a header row, "[TIMESTAMP] LEVEL: MESSAGE" application
logs, custom regular expressions with named groups, and raw lines. The
format can be detected automatically.

Parsed entries can be searched, sorted and paged, summarized into traffic
statistics, and exported as JSON, CSV or a plain-text report.

Exit codes:
  0 - Success
  1 - Lines failed to parse (with --fail-on-errors)
  2 - Configuration or runtime error`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := setup(cmd.Context(), v)
			closeLog = cleanup
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeLog == nil {
				return nil
			}
			return closeLog()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Config file (YAML)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (console|json)")

	for _, name := range []string{"config", "log-level", "log-format"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewSummaryCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}

// setup loads the configuration, applies the logging overrides and installs
// both for the subcommands. Flags win over the environment, which wins over
// the config file.
func setup(ctx context.Context, v *viper.Viper) (func() error, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := v.GetString("config"); path != "" {
		cfg, err = config.Load(ctx, path)
	} else {
		cfg, err = config.FromEnvironment()
	}
	if err != nil {
		return nil, err
	}

	if level := v.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if format := v.GetString("log-format"); format != "" {
		cfg.Logging.Format = format
	}

	logger, cleanup, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return nil, err
	}

	commands.Configure(cfg, logger)
	return cleanup, nil
}
