// Package report turns a simulation bundle into tables: the per-subgroup
// summary, the person-year totals with their errors, and per-patient
// statistics. Renderers write them as text or as an xlsx workbook.
package report

import (
	"painburden/internal/simulation"
	"painburden/internal/stats"
)

// Thresholds used by the tables, on the 0-10 scale.
const (
	SevereThreshold = 7.0
	HighThreshold   = 9.0
)

// TotalLabel names the row that sums all subgroups.
const TotalLabel = "Total"

// SummaryRow is one line of the summary table. Average-patient figures are in
// hours (adjusted units are adjusted minutes / 60); global figures are in
// person-years.
type SummaryRow struct {
	Group string `json:"group"`

	AvgHours             float64 `json:"avg_hours"`
	AvgHighHours         float64 `json:"avg_high_hours"`
	AvgAdjustedUnits     float64 `json:"avg_adjusted_units"`
	AvgHighAdjustedUnits float64 `json:"avg_high_adjusted_units"`

	PersonYears       float64 `json:"person_years"`
	HighPersonYears   float64 `json:"high_person_years"`
	AdjustedUnits     float64 `json:"adjusted_units"`
	HighAdjustedUnits float64 `json:"high_adjusted_units"`
}

func (r *SummaryRow) add(o SummaryRow) {
	r.AvgHours += o.AvgHours
	r.AvgHighHours += o.AvgHighHours
	r.AvgAdjustedUnits += o.AvgAdjustedUnits
	r.AvgHighAdjustedUnits += o.AvgHighAdjustedUnits
	r.PersonYears += o.PersonYears
	r.HighPersonYears += o.HighPersonYears
	r.AdjustedUnits += o.AdjustedUnits
	r.HighAdjustedUnits += o.HighAdjustedUnits
}

// Summarize builds one row per subgroup followed by the Total row.
func Summarize(r *simulation.Results) []SummaryRow {
	high := stats.ThresholdIndex(HighThreshold)

	rows := make([]SummaryRow, 0, len(r.Groups)+1)
	total := SummaryRow{Group: TotalLabel}
	for i, g := range r.Groups {
		adj := r.Adjusted.Groups[i]
		row := SummaryRow{
			Group:                g.Subgroup.String(),
			AvgHours:             g.AverageMinutes.Sum() / 60,
			AvgHighHours:         g.AverageMinutes.SumFrom(high) / 60,
			AvgAdjustedUnits:     adj.AverageMinutes.Sum() / 60,
			AvgHighAdjustedUnits: adj.AverageMinutes.SumFrom(high) / 60,
			PersonYears:          g.PersonYears.Sum(),
			HighPersonYears:      g.PersonYears.SumFrom(high),
			AdjustedUnits:        adj.PersonYears.Sum(),
			HighAdjustedUnits:    adj.PersonYears.SumFrom(high),
		}
		total.add(row)
		rows = append(rows, row)
	}
	return append(rows, total)
}
