package simulation

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"painburden/internal/stats"
)

// MinutesPerYear converts minutes to person-years.
const MinutesPerYear = 60 * 24 * 365

// GroupResult is the aggregate of one subgroup's sampled patients.
type GroupResult struct {
	Subgroup  Subgroup `json:"subgroup"`
	TrueCount int64    `json:"true_count"`
	Sampled   int      `json:"sampled"`

	TotalMinutes   stats.Profile `json:"total_minutes"`
	AverageMinutes stats.Profile `json:"average_minutes"`
	StdMinutes     stats.Profile `json:"std_minutes"`

	// Person-years extrapolate the average patient to the whole subgroup.
	PersonYears    stats.Profile `json:"person_years"`
	PersonYearsStd stats.Profile `json:"person_years_std"`

	AttackCounts       []int     `json:"attack_counts"`
	TotalDurations     []float64 `json:"total_durations"`
	AverageIntensities []float64 `json:"average_intensities"`
}

// Aggregate reduces a population to per-subgroup profiles, in AllSubgroups order.
func Aggregate(pop *Population) []GroupResult {
	results := make([]GroupResult, 0, len(pop.Sizes))
	for i, size := range pop.Sizes {
		results = append(results, aggregateGroup(size, pop.Patients[i]))
	}
	return results
}

func aggregateGroup(size SubgroupSize, patients []Patient) GroupResult {
	r := GroupResult{
		Subgroup:           size.Subgroup,
		TrueCount:          size.TrueCount,
		Sampled:            len(patients),
		AttackCounts:       make([]int, len(patients)),
		TotalDurations:     make([]float64, len(patients)),
		AverageIntensities: make([]float64, len(patients)),
	}
	for j, p := range patients {
		r.AttackCounts[j] = p.TotalAttacks()
		r.TotalDurations[j] = p.TotalDuration()
		r.AverageIntensities[j] = p.AverageIntensity()
	}
	if len(patients) == 0 {
		return r
	}

	column := make([]float64, len(patients))
	for b := range stats.Buckets {
		for j, p := range patients {
			column[j] = p.minutes[b]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		r.AverageMinutes[b] = mean
		r.StdMinutes[b] = std
		r.TotalMinutes[b] = floats.Sum(column)
	}

	scale := float64(size.TrueCount) / MinutesPerYear
	r.PersonYears = r.AverageMinutes.Scale(scale)
	r.PersonYearsStd = r.StdMinutes.Scale(scale)
	return r
}
