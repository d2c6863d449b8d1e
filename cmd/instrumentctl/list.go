package main

import (
	"fmt"
	"text/tabwriter"

	"healmymind_backend/internal/scoring/instruments"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in instruments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := instruments.All()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tNAME\tQUESTIONS\tSCORE RANGE")
			for _, in := range all {
				def, err := in.Compile()
				if err != nil {
					return exitError(1, "built-in %s: %v", in.Type, err)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d-%d\n", in.Type, in.Name, len(in.Questions), def.MinScore(), def.MaxScore())
			}
			return w.Flush()
		},
	}
}
