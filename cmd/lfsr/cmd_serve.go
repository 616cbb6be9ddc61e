// Copyright (C) 2018. See AUTHORS.

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/spacemonkeygo/lfsr/internal/server"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored generators over HTTP",
		Long: `Starts the HTTP service. It stops gracefully on SIGINT or SIGTERM.

Example requests:

  curl -X POST localhost:8080/v1/generators/a -d '{"seed":1}'
  curl -X POST 'localhost:8080/v1/generators/a/next?count=4'
  curl localhost:8080/v1/check
  curl localhost:8080/metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = g.cfg.Server.Address
			}
			if lvl, _ := g.cfg.Level(); lvl > slog.LevelDebug {
				gin.SetMode(gin.ReleaseMode)
			}

			st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(st, server.Options{
				Source:   g.cfg.SeedSource(),
				MaxBatch: g.cfg.Server.MaxBatch,
				Logger:   g.logger,
			})
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
