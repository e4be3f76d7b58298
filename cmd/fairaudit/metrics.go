package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-fairaudit/internal/application"
)

func newMetricsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "List the fairness metrics every audit reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := application.NewMetricRegistry().List()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "METRIC\tALIAS OF\tRATE\tDESCRIPTION")
			for _, d := range list {
				alias := "-"
				if d.AliasOf != "" {
					alias = string(d.AliasOf)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, alias, d.Rate, d.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print metrics as JSON")
	return cmd
}
