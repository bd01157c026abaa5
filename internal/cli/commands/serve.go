package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/loglens/internal/server"
)

// ServeOptions holds command-line options for the serve command.
type ServeOptions struct {
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse, query, summary and export API over HTTP",
		Long: `Start an HTTP server exposing the LogLens operations as JSON endpoints:

  GET  /healthz
  POST /api/parse
  POST /api/query
  POST /api/summary
  POST /api/export

Every request carries the log content and its own configuration; the
server keeps no state between requests. Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "Address to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(opts.Addr, server.WithLogger(logger)).Run(ctx)
}
