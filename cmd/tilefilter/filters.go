package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ironsheep/tile-filter-mcp/internal/filter"
)

func newFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List available filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tDESCRIPTION")
			for _, info := range filter.List() {
				kind := "context"
				if info.Pointwise {
					kind = "pointwise"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, kind, info.Description)
			}
			return w.Flush()
		},
	}
}
