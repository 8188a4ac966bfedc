package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live preview server",
		Long: `Mount the project's root template and serve it over HTTP.

Connected browsers receive the re-rendered page whenever data changes
through POST /data, POST /events/{type} or the live socket.

Examples:
  vbind serve
  vbind serve --addr=0.0.0.0:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			app, err := vbind.New(cfg)
			if err != nil {
				return err
			}
			root, doc, err := app.Mount()
			if err != nil {
				return err
			}

			srvConfig := server.Config{
				Addr:   cfg.Server.Addr,
				Title:  cfg.Name,
				Logger: app.Logger(),
			}
			if reg := app.Registry(); reg != nil {
				srvConfig.Gatherer = reg
				srvConfig.Registerer = reg
			}
			srv := server.New(app.Engine(), root, doc, srvConfig)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			success("Serving %s", cfg)
			info("http://%s", cfg.Server.Addr)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to vbind.yaml (default: search upwards)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from vbind.yaml)")

	return cmd
}
