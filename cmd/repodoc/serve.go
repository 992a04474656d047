package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/julianshen/repodoc/internal/api"
)

func serveCmd(root *rootOptions) *cobra.Command {
	var addrFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis pipeline over HTTP",
		Long: `Start an HTTP server exposing POST /api/analyze and GET /health.
Clients sending "Accept: text/event-stream" receive progress events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger := root.newLogger(cmd.ErrOrStderr(), cfg)
			logger.Debug("configuration loaded", "config", cfg)

			coord, err := newCoordinator(cfg, logger)
			if err != nil {
				return err
			}

			addr := cfg.Server.Addr
			if addrFlag != "" {
				addr = addrFlag
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(coord, api.Options{
				Version:    version,
				AllowLocal: cfg.Server.AllowLocal,
			}, logger)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (default from config)")
	return cmd
}
