package report

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// WriteText renders the summary table and the totals as aligned columns.
// Each cell reads "raw (adjusted)".
func WriteText(w io.Writer, rows []SummaryRow, totals Totals) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "Group\tHours in pain\tHours >= 9/10\tPerson-years\tPerson-years >= 9/10\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			r.Group,
			pair(r.AvgHours, r.AvgAdjustedUnits),
			pair(r.AvgHighHours, r.AvgHighAdjustedUnits),
			pair(r.PersonYears, r.AdjustedUnits),
			pair(r.HighPersonYears, r.HighAdjustedUnits),
		)
	}
	fmt.Fprintln(tw, "\t\t\t\t\t")

	fmt.Fprintln(tw, "Person-years\tTotal\t>= 7/10\t>= 9/10\t\t")
	for _, g := range totals.Groups {
		fmt.Fprintf(tw, "%s\t%s\t\t%s\t\t\n", g.Group, withError(g.Total), withError(g.High))
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\t\n", TotalLabel, withError(totals.Total), withError(totals.Severe), withError(totals.High))
	fmt.Fprintf(tw, "Comparator\t%s\t\t\t\t\n", pair(totals.Comparator, totals.ComparatorAdjusted))

	return tw.Flush()
}

func pair(raw, adjusted float64) string {
	return fmt.Sprintf("%s (%s)", comma(raw), comma(adjusted))
}

func withError(e Estimate) string {
	return fmt.Sprintf("%s ± %s", comma(e.Value), comma(e.Error))
}

func comma(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= math.MaxInt64 {
		return humanize.Commaf(v)
	}
	return humanize.Comma(int64(math.Round(v)))
}
