package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newDemoCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the container self-checks against the demo services",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, d, err := newDemoApp(flags)
			if err != nil {
				return err
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				return runChecks(ctx, app.Container, d, cmd.OutOrStdout())
			})
		},
	}
}
