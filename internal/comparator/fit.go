// Package comparator fits a pain-intensity distribution for a comparator
// condition from its mean, median and standard deviation, and scales it to
// global person-years on the intensity grid.
package comparator

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/optimize"

	"painburden/internal/stats"
)

const (
	// WakingFraction restricts burden to waking hours (16 of 24).
	WakingFraction = 16.0 / 24.0
	// maxAlpha bounds the shape parameter; beyond it the family is effectively half-normal.
	maxAlpha = 50.0
)

// Fit is the outcome of matching a skew-normal to summary statistics.
type Fit struct {
	Distribution SkewNormal `json:"distribution"`
	// Achieved moments of the fitted distribution.
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std"`
	// Loss is the residual sum of squared moment errors.
	Loss float64 `json:"loss"`
}

// FitSkewNormal finds the skew-normal whose mean, median and standard deviation
// are closest (least squares) to the targets. The skew-normal cannot reach
// every combination (|mean-median| is at most about 0.2 std), so the result is
// approximate when the targets are strongly asymmetric; the sign of the
// skew always follows mean - median.
func FitSkewNormal(mean, median, std float64) Fit {
	decode := func(x []float64) SkewNormal {
		return SkewNormal{Xi: x[0], Omega: math.Exp(x[1]), Alpha: maxAlpha * math.Tanh(x[2])}
	}

	loss := func(x []float64) float64 {
		d := decode(x)
		if d.Omega <= 0 || math.IsInf(d.Omega, 0) || math.IsNaN(d.Omega) {
			return math.Inf(1)
		}
		dm := d.Mean() - mean
		dmed := d.Median() - median
		ds := d.StdDev() - std
		return dm*dm + dmed*dmed + ds*ds
	}

	// Pearson's second skewness coefficient seeds the shape.
	theta := math.Max(-2, math.Min(2, 3*(mean-median)/std))
	init := []float64{median, math.Log(std), theta}

	problem := optimize.Problem{Func: loss}
	settings := &optimize.Settings{
		FuncEvaluations: 4000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Iterations: 50,
		},
	}

	x := init
	res, err := optimize.Minimize(problem, init, settings, &optimize.NelderMead{})
	if err != nil {
		log.Debug().Err(err).Msg("Skew-normal fit stopped early")
	}
	if res != nil && len(res.X) == 3 && res.F <= loss(init) {
		x = res.X
	}

	d := decode(x)
	return Fit{
		Distribution: d,
		Mean:         d.Mean(),
		Median:       d.Median(),
		StdDev:       d.StdDev(),
		Loss:         loss(x),
	}
}

// Density evaluates the fitted distribution on the intensity grid and
// rescales every bucket by the same factor so that sum(density) * BinWidth = 1
// over [0, 10]. Mass outside the scale is dropped and the remainder scaled up
// proportionally.
func (f Fit) Density() stats.Profile {
	var p stats.Profile
	for i := range p {
		p[i] = f.Distribution.Prob(stats.Intensity(i))
	}
	mass := p.Sum() * stats.BinWidth
	if mass <= 0 || math.IsNaN(mass) {
		return stats.Profile{}
	}
	return p.Scale(1 / mass)
}

// Burden is the comparator's global person-years per intensity bucket.
type Burden struct {
	Params      Params        `json:"params"`
	Fit         Fit           `json:"fit"`
	Sufferers   float64       `json:"sufferers"`
	PersonYears stats.Profile `json:"person_years"`
}

// Total returns the summed person-years.
func (b Burden) Total() float64 {
	return b.PersonYears.Sum()
}

// Estimate fits the comparator distribution and scales it to global person-years:
// sufferers * fraction of year in pain * waking fraction * bin width per bucket density.
func Estimate(p Params, worldPopulation float64) (Burden, error) {
	if err := p.Validate(); err != nil {
		return Burden{}, err
	}

	fit := FitSkewNormal(p.Mean, p.Median, p.StdDev)
	sufferers := worldPopulation * p.PrevalencePer100k / 100_000
	scale := sufferers * p.FractionOfYearInPain * WakingFraction * stats.BinWidth

	return Burden{
		Params:      p,
		Fit:         fit,
		Sufferers:   sufferers,
		PersonYears: fit.Density().Scale(scale),
	}, nil
}
