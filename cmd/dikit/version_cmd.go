package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/dikit/version"
)

func newVersionCmd() *cobra.Command {
	var deps bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			info := version.GetVersionInfo()
			fmt.Fprintf(out, "%s %s\n", serviceName, info.Full())
			if deps {
				for _, line := range info.DepLines() {
					fmt.Fprintf(out, "  %s\n", line)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&deps, "deps", false, "also list module dependencies")
	return cmd
}
