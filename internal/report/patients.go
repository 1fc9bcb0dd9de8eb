package report

import (
	"fmt"

	mstats "github.com/montanaflynn/stats"

	"painburden/internal/simulation"
)

// Distribution summarizes one per-patient vector.
type Distribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// PatientSummary describes the sampled patients of one subgroup.
type PatientSummary struct {
	Group            string       `json:"group"`
	Patients         int          `json:"patients"`
	Attacks          Distribution `json:"attacks"`
	TotalHours       Distribution `json:"total_hours"`
	AverageIntensity Distribution `json:"average_intensity"`
}

// PatientStats summarizes the per-patient vectors of every subgroup. Empty
// subgroups report zeros.
func PatientStats(r *simulation.Results) ([]PatientSummary, error) {
	out := make([]PatientSummary, 0, len(r.Groups))
	for _, g := range r.Groups {
		s := PatientSummary{Group: g.Subgroup.String(), Patients: g.Sampled}
		if g.Sampled == 0 {
			out = append(out, s)
			continue
		}

		attacks := make(mstats.Float64Data, len(g.AttackCounts))
		for i, n := range g.AttackCounts {
			attacks[i] = float64(n)
		}
		hours := make(mstats.Float64Data, len(g.TotalDurations))
		for i, m := range g.TotalDurations {
			hours[i] = m / 60
		}

		var err error
		if s.Attacks, err = describe(attacks); err != nil {
			return nil, fmt.Errorf("%s attacks: %w", s.Group, err)
		}
		if s.TotalHours, err = describe(hours); err != nil {
			return nil, fmt.Errorf("%s hours: %w", s.Group, err)
		}
		if s.AverageIntensity, err = describe(mstats.Float64Data(g.AverageIntensities)); err != nil {
			return nil, fmt.Errorf("%s intensity: %w", s.Group, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func describe(data mstats.Float64Data) (Distribution, error) {
	mean, err := mstats.Mean(data)
	if err != nil {
		return Distribution{}, err
	}
	median, err := mstats.Median(data)
	if err != nil {
		return Distribution{}, err
	}
	p90, err := mstats.Percentile(data, 90)
	if err != nil {
		return Distribution{}, err
	}
	max, err := mstats.Max(data)
	if err != nil {
		return Distribution{}, err
	}
	return Distribution{Mean: mean, Median: median, P90: p90, Max: max}, nil
}
