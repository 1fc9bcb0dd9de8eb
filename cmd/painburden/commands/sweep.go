package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"painburden/internal/simulation"
)

var (
	sweepThreshold float64
	sweepMatrix    bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare the Taylor-weighted burden with the comparator across series orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runOnce(cmd)
		if err != nil {
			return err
		}
		sweep, err := simulation.TaylorSweep(res, sweepThreshold, nil)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "Order\tBurden >= %.1f\t%s\tRatio\t\n", sweep.Threshold, res.Comparator.Params.Name)
		for _, p := range sweep.Points {
			ratio := "-"
			if p.Defined {
				ratio = fmt.Sprintf("%.3g", p.Ratio)
			}
			fmt.Fprintf(tw, "%d\t%.4g\t%.4g\t%s\t\n", p.Order, p.PrimaryBurden, p.ComparatorBurden, ratio)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if sweep.CrossingOrder > 0 {
			fmt.Fprintf(out, "\nBurden exceeds %s from Taylor order %d.\n", res.Comparator.Params.Name, sweep.CrossingOrder)
		} else {
			fmt.Fprintf(out, "\nBurden stays below %s for every order.\n", res.Comparator.Params.Name)
		}

		if !sweepMatrix {
			return nil
		}
		m, err := simulation.BurdenRatioMatrix(res, nil, nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "\nlog10(burden ratio), rows: threshold, columns: order")
		tw = tabwriter.NewWriter(out, 0, 0, 1, ' ', tabwriter.AlignRight)
		fmt.Fprint(tw, "\t")
		for _, n := range m.Orders {
			fmt.Fprintf(tw, "%d\t", n)
		}
		fmt.Fprintln(tw)
		for i, th := range m.Thresholds {
			fmt.Fprintf(tw, "%.1f\t", th)
			for j := range m.Orders {
				if m.Defined[i][j] {
					fmt.Fprintf(tw, "%.1f\t", m.Log10Ratio[i][j])
				} else {
					fmt.Fprint(tw, "-\t")
				}
			}
			fmt.Fprintln(tw)
		}
		return tw.Flush()
	},
}

func init() {
	sweepCmd.Flags().Float64Var(&sweepThreshold, "threshold", 0, "minimum intensity counted towards the burden")
	sweepCmd.Flags().BoolVar(&sweepMatrix, "matrix", false, "also print the threshold x order ratio matrix")
	sweepCmd.Flags().Uint64Var(&runSeed, "seed", 0, "random seed")
	rootCmd.AddCommand(sweepCmd)
}
