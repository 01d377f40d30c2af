package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cinelog/internal/httpapi"
	"cinelog/internal/logging"
	"cinelog/internal/workspace"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the collection as a local JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			addr := strings.TrimSpace(bind)
			if addr == "" {
				addr = cfg.API.Bind
			}

			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			ws, err := workspace.Open(runCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer ws.Close()

			opts := httpapi.Options{Engine: ws.Engine, Genres: ws.Genres, Logger: logger}
			if ws.TMDB != nil {
				opts.Catalog = ws.TMDB
			}
			srv, err := httpapi.New(opts)
			if err != nil {
				return err
			}
			if err := srv.Start(runCtx, addr); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", srv.Addr())

			<-runCtx.Done()
			srv.Stop()
			logger.Info("api server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from config api.bind)")
	return cmd
}
