package report

import (
	"painburden/internal/simulation"
	"painburden/internal/stats"
)

// Estimate is a person-year figure with its quadrature error.
type Estimate struct {
	Value float64 `json:"value"`
	Error float64 `json:"error"`
}

// GroupTotals are the per-subgroup person-years overall and at >= 9/10.
type GroupTotals struct {
	Group string   `json:"group"`
	Total Estimate `json:"total"`
	High  Estimate `json:"high"`
}

// Totals aggregates person-years over every subgroup. Errors combine the
// per-bucket standard deviations as sqrt(sum of squares).
type Totals struct {
	Groups   []GroupTotals `json:"groups"`
	Total    Estimate      `json:"total"`
	Severe   Estimate      `json:"severe"`
	High     Estimate      `json:"high"`
	Adjusted float64       `json:"adjusted"`
	// Comparator is the comparator condition's raw and adjusted person-years.
	Comparator         float64 `json:"comparator"`
	ComparatorAdjusted float64 `json:"comparator_adjusted"`
}

// ComputeTotals summarizes the bundle's person-years.
func ComputeTotals(r *simulation.Results) Totals {
	severe := stats.ThresholdIndex(SevereThreshold)
	high := stats.ThresholdIndex(HighThreshold)

	var (
		t     Totals
		stds  = make([]stats.Profile, 0, len(r.Groups))
		years = make([]stats.Profile, 0, len(r.Groups))
	)
	for i, g := range r.Groups {
		t.Groups = append(t.Groups, GroupTotals{
			Group: g.Subgroup.String(),
			Total: Estimate{Value: g.PersonYears.Sum(), Error: stats.Quadrature(0, g.PersonYearsStd)},
			High:  Estimate{Value: g.PersonYears.SumFrom(high), Error: stats.Quadrature(high, g.PersonYearsStd)},
		})
		stds = append(stds, g.PersonYearsStd)
		years = append(years, g.PersonYears)
		t.Adjusted += r.Adjusted.Groups[i].PersonYears.Sum()
	}

	all := stats.SumProfiles(years...)
	t.Total = Estimate{Value: all.Sum(), Error: stats.Quadrature(0, stds...)}
	t.Severe = Estimate{Value: all.SumFrom(severe), Error: stats.Quadrature(severe, stds...)}
	t.High = Estimate{Value: all.SumFrom(high), Error: stats.Quadrature(high, stds...)}
	t.Comparator = r.Comparator.PersonYears.Sum()
	t.ComparatorAdjusted = r.Adjusted.ComparatorPersonYears.Sum()
	return t
}
