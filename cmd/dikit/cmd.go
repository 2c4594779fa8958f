package main

import (
	"github.com/spf13/cobra"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	ConfigFile string
	EnvFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "dikit",
		Short:         "Dependency injection container toolkit",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "path to config.yml (searched for when empty)")
	cmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", "", "path to a .env file (searched for when empty)")

	cmd.AddCommand(
		newDemoCmd(flags),
		newRegistrationsCmd(flags),
		newServeCmd(flags),
		newVersionCmd(),
	)
	return cmd
}
