package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/dikit/diagnostics"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagnostics routes for the demo container",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := newDemoApp(flags)
			if err != nil {
				return err
			}

			cfg := app.Cfg.Diagnostics
			if addr != "" {
				cfg.Addr = addr
			}
			srv := diagnostics.New(cfg, app.Name, app.Container, nil)

			app.OnReady(srv.Start)
			app.OnStop(func(ctx context.Context) error {
				return srv.Stop(ctx)
			})
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8089)")
	return cmd
}
