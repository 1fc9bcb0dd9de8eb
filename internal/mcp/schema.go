package mcp

import (
	"painburden/internal/report"
	"painburden/internal/simulation"
)

// PreviewSubgroupsInput optionally changes the population settings before previewing.
type PreviewSubgroupsInput struct {
	PrevalencePer100k *float64 `json:"prevalence_per_100k,omitempty" jsonschema:"Annual prevalence per 100,000 adults"`
	PropChronic       *float64 `json:"prop_chronic,omitempty" jsonschema:"Share of chronic sufferers between 0 and 1; the episodic share is its complement"`
	PropTreated       *float64 `json:"prop_treated,omitempty" jsonschema:"Share of treated sufferers between 0 and 1; the untreated share is its complement"`
	PercentToSimulate *float64 `json:"percent_to_simulate,omitempty" jsonschema:"Percent of all sufferers to simulate, e.g. 0.02 for 0.02 percent"`
}

// PreviewSubgroupsOutput lists the subgroup sizes.
type PreviewSubgroupsOutput struct {
	TotalSufferers int64                     `json:"total_sufferers" jsonschema:"Affected adults worldwide"`
	TotalSimulated int                       `json:"total_simulated" jsonschema:"Patients a run would simulate"`
	Groups         []simulation.PreviewGroup `json:"groups" jsonschema:"True and sampled size per subgroup"`
	Guidance       []string                  `json:"_guidance,omitempty"`
}

// RunSimulationInput selects the seed of a run.
type RunSimulationInput struct {
	Seed *uint64 `json:"seed,omitempty" jsonschema:"Random seed; the configured seed is used when omitted"`
}

// SummaryOutput carries the summary tables of the latest bundle.
type SummaryOutput struct {
	RunID    string                  `json:"run_id"`
	Seed     uint64                  `json:"seed"`
	Method   string                  `json:"method" jsonschema:"Active transformation method"`
	Summary  []report.SummaryRow     `json:"summary" jsonschema:"Per-subgroup rows followed by the Total row"`
	Totals   report.Totals           `json:"totals" jsonschema:"Person-years with quadrature errors"`
	Patients []report.PatientSummary `json:"patients,omitempty" jsonschema:"Per-patient distributions per subgroup"`
	Visuals  map[string]string       `json:"visuals,omitempty"`
	Guidance []string                `json:"_guidance,omitempty"`
}

// SetTransformationInput re-weights the latest run. Omitted numbers keep their current value.
type SetTransformationInput struct {
	Method        string   `json:"method" jsonschema:"One of linear, piecewise_linear, power, exponential, taylor"`
	MaxValue      *float64 `json:"max_value,omitempty" jsonschema:"Curve height at intensity 10 divided by 10; must be positive for non-linear methods"`
	Power         *float64 `json:"power,omitempty" jsonschema:"Exponent of the power method, at least 1"`
	Base          *float64 `json:"base,omitempty" jsonschema:"Base of the exponential and taylor methods, greater than 1"`
	ScalingFactor *float64 `json:"scaling_factor,omitempty" jsonschema:"Exponent scale of the exponential and taylor methods, greater than 0"`
	TaylorOrder   *int     `json:"taylor_order,omitempty" jsonschema:"Number of series terms for the taylor method, from 2 to 1000"`

	ComparatorPrevalencePer100k *float64 `json:"comparator_prevalence_per_100k,omitempty" jsonschema:"Comparator prevalence per 100,000 adults"`
	ComparatorFractionInPain    *float64 `json:"comparator_fraction_in_pain,omitempty" jsonschema:"Fraction of the year comparator sufferers spend in pain"`
	ComparatorMean              *float64 `json:"comparator_mean,omitempty" jsonschema:"Mean comparator pain intensity"`
	ComparatorMedian            *float64 `json:"comparator_median,omitempty" jsonschema:"Median comparator pain intensity"`
	ComparatorStd               *float64 `json:"comparator_std,omitempty" jsonschema:"Standard deviation of comparator pain intensity"`
}

// SetTransformationOutput describes the retransformed bundle.
type SetTransformationOutput struct {
	RunID           string              `json:"run_id"`
	Method          string              `json:"method"`
	TransformedGrid []float64           `json:"transformed_grid" jsonschema:"T(x) for x = 0.0, 0.1, ..., 10.0"`
	Saturated       int                 `json:"saturated" jsonschema:"Values clamped to stay finite"`
	Summary         []report.SummaryRow `json:"summary"`
	Guidance        []string            `json:"_guidance,omitempty"`
}

// GetSummaryInput takes no arguments.
type GetSummaryInput struct{}

// GetAdjustedBurdenInput selects a subgroup and a threshold.
type GetAdjustedBurdenInput struct {
	Subgroup  string   `json:"subgroup,omitempty" jsonschema:"Subgroup name such as Chronic Untreated; all subgroups when omitted"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"Only intensities at or above this value count towards the totals; default 0"`
}

// BurdenProfile is a raw and adjusted person-year profile on the intensity grid.
type BurdenProfile struct {
	Name          string    `json:"name"`
	Raw           []float64 `json:"raw"`
	Adjusted      []float64 `json:"adjusted"`
	RawAbove      float64   `json:"raw_above" jsonschema:"Raw person-years at or above the threshold"`
	AdjustedAbove float64   `json:"adjusted_above" jsonschema:"Adjusted units at or above the threshold"`
}

// GetAdjustedBurdenOutput holds the profiles of the latest bundle.
type GetAdjustedBurdenOutput struct {
	RunID      string            `json:"run_id"`
	Method     string            `json:"method"`
	Threshold  float64           `json:"threshold"`
	Grid       []float64         `json:"grid"`
	Groups     []BurdenProfile   `json:"groups"`
	Comparator BurdenProfile     `json:"comparator"`
	Visuals    map[string]string `json:"visuals,omitempty"`
}

// RunTaylorSweepInput configures a sweep over Taylor orders.
type RunTaylorSweepInput struct {
	Threshold     *float64 `json:"threshold,omitempty" jsonschema:"Intensity threshold; default 0"`
	MinOrder      *int     `json:"min_order,omitempty" jsonschema:"First Taylor order; default 2"`
	MaxOrder      *int     `json:"max_order,omitempty" jsonschema:"Last Taylor order; default 35"`
	IncludeMatrix bool     `json:"include_matrix,omitempty" jsonschema:"Also compute the log10 burden ratio over thresholds 0 to 10 and orders 2 to 24"`
}

// RunTaylorSweepOutput reports the sweep and, optionally, the ratio matrix.
type RunTaylorSweepOutput struct {
	Threshold     float64                 `json:"threshold"`
	CrossingOrder int                     `json:"crossing_order" jsonschema:"First order whose burden exceeds the comparator's, 0 if none"`
	Points        []simulation.SweepPoint `json:"points"`
	Matrix        *simulation.RatioMatrix `json:"matrix,omitempty"`
	Visuals       map[string]string       `json:"visuals,omitempty"`
	Guidance      []string                `json:"_guidance,omitempty"`
}
