package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate counts and population-normalized rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runPipeline(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

		fmt.Fprintf(w, "Rows read\t%d\n", result.Load.RowsRead)
		fmt.Fprintf(w, "Rows kept\t%d\n", result.CleanCount)
		fmt.Fprintf(w, "Dropped\t%d\n\n", result.Drops.Total())

		fmt.Fprintln(w, "BOROUGH\tINCIDENTS\tPOPULATION\tRATE/100K")
		for _, r := range result.Rates {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\n", r.Borough, r.Count, r.Population, r.RatePer100k)
		}
		for _, name := range result.Unmatched {
			fmt.Fprintf(w, "%s\t-\t-\tno match\n", name)
		}

		fmt.Fprintln(w, "\nMONTH\tBOROUGH\tINCIDENTS")
		for _, m := range result.Monthly {
			fmt.Fprintf(w, "%s\t%s\t%d\n", m.Month, m.Borough, m.Count)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
