package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/dikit/bootstrap"
	"github.com/kbukum/dikit/di"
)

func newRegistrationsCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "registrations",
		Short: "List the demo container's registrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := newDemoApp(flags, bootstrap.WithSummaryOutput(io.Discard))
			if err != nil {
				return err
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				return printRegistrations(cmd.OutOrStdout(), app.Container.Registrations(), asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func printRegistrations(w io.Writer, regs []di.RegistrationInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(regs)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLIFETIME\tKEY TYPE\tIMPL TYPE\tDEFAULT\tINITIALIZED")
	for _, r := range regs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\n",
			r.Key, r.Lifetime, r.KeyType, r.ImplType, r.DefaultConstructed, r.Initialized)
	}
	return tw.Flush()
}
