package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show subgroup sizes without simulating",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := engine.Preview()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Total sufferers: %s\n", humanize.Comma(p.TotalSufferers))
		fmt.Fprintf(out, "Patients to simulate: %s\n\n", humanize.Comma(int64(p.TotalSimulated)))

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Subgroup\tSufferers\tSimulated\tShare\t")
		for _, g := range p.Groups {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d%%\t\n", g.Name, humanize.Comma(g.TrueCount), g.Sampled, g.Percentage)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
