package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/panelarc/panelarc/internal/httpapi"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only archive queries over HTTP",
		Long: `Start the HTTP API: archive listings, version listings, and as-of
snapshots. Configuration comes from PANELARC_* environment variables;
--addr and the global --db flag override the environment.

The server is read-only. Ingestion stays on the CLI so every write
leaves an ingest record.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides PANELARC_ADDR)")

	return cmd
}

func runServe(opts *RootOptions, cmd *cobra.Command, addr string) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := httpapi.LoadConfig()
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = opts.DBPath
	}

	s, err := openStoreAt(cfg.DBPath, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpapi.NewServer(s)
	if err := srv.ListenAndServe(ctx, cfg); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "server", err)
	}
	return nil
}
