package comparator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painburden/internal/stats"
)

func TestSkewNormal_ClosedFormMoments(t *testing.T) {
	d := SkewNormal{Xi: 2, Omega: 1.5, Alpha: 4}

	// Numerical mean over a wide range should match the closed form.
	n := 20000
	lo, hi := d.Xi-12*d.Omega, d.Xi+12*d.Omega
	step := (hi - lo) / float64(n)
	mean, mass := 0.0, 0.0
	for i := 0; i < n; i++ {
		x := lo + (float64(i)+0.5)*step
		p := d.Prob(x) * step
		mass += p
		mean += x * p
	}
	assert.InDelta(t, 1.0, mass, 1e-6)
	assert.InDelta(t, d.Mean(), mean, 1e-4)
	assert.InDelta(t, 0.5, d.CDF(d.Median()), 1e-6)
	assert.Greater(t, d.Skewness(), 0.0)
}

func TestFitSkewNormal_SkewFollowsMeanMedianGap(t *testing.T) {
	tests := []struct {
		name         string
		mean, median float64
		std          float64
		sign         float64
	}{
		{"LeftSkewed", 1.5, 3.5, 1.8, -1},
		{"RightSkewed", 4.0, 3.6, 1.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit := FitSkewNormal(tt.mean, tt.median, tt.std)
			assert.Equal(t, tt.sign, math.Copysign(1, fit.Distribution.Alpha))
			assert.Equal(t, tt.sign, math.Copysign(1, fit.Distribution.Skewness()))
			assert.Equal(t, tt.sign, math.Copysign(1, fit.Mean-fit.Median))
		})
	}
}

func TestFitSkewNormal_SymmetricTargets(t *testing.T) {
	fit := FitSkewNormal(5, 5, 1.5)
	assert.Less(t, math.Abs(fit.Distribution.Alpha), 0.5)
	assert.InDelta(t, 5, fit.Mean, 0.05)
	assert.InDelta(t, 1.5, fit.StdDev, 0.05)
	assert.Less(t, fit.Loss, 1e-3)
}

func TestDensity_IntegratesToOneOnGrid(t *testing.T) {
	fit := FitSkewNormal(1.5, 3.5, 1.8)
	density := fit.Density()
	assert.InDelta(t, 1.0, density.Sum()*stats.BinWidth, 1e-9)
	assert.True(t, density.NonNegative())
}

func TestDensity_ScalesProportionally(t *testing.T) {
	// Centred near the top of the scale so a large share of mass lies above 10.
	fit := Fit{Distribution: SkewNormal{Xi: 9.5, Omega: 2, Alpha: 0}}
	density := fit.Density()

	ratio := density[50] / fit.Distribution.Prob(stats.Intensity(50))
	require.Greater(t, ratio, 1.0)
	for i := range density {
		assert.InDelta(t, ratio, density[i]/fit.Distribution.Prob(stats.Intensity(i)), 1e-9*ratio, "bucket %d", i)
	}
}

func TestEstimate_ScalesToPersonYears(t *testing.T) {
	p := DefaultParams()
	world := 5_728_759_000.0

	burden, err := Estimate(p, world)
	require.NoError(t, err)

	sufferers := world * 37 / 100_000
	assert.InDelta(t, sufferers, burden.Sufferers, 1e-6)

	expected := sufferers * 0.25 * 16 / 24
	assert.InDelta(t, expected, burden.Total(), expected*1e-9)
	assert.True(t, burden.PersonYears.NonNegative())
}

func TestEstimate_ZeroPrevalence(t *testing.T) {
	p := DefaultParams()
	p.PrevalencePer100k = 0

	burden, err := Estimate(p, 1e9)
	require.NoError(t, err)
	assert.Equal(t, stats.Profile{}, burden.PersonYears)
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(p *Params)
		field string
	}{
		{"NegativePrevalence", func(p *Params) { p.PrevalencePer100k = -1 }, "prevalence_per_100k"},
		{"FractionAboveOne", func(p *Params) { p.FractionOfYearInPain = 1.2 }, "fraction_of_year_in_pain"},
		{"MeanOffScale", func(p *Params) { p.Mean = 11 }, "mean"},
		{"MedianNaN", func(p *Params) { p.Median = math.NaN() }, "median"},
		{"ZeroStd", func(p *Params) { p.StdDev = 0 }, "std"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mod(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParams))

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	assert.NoError(t, DefaultParams().Validate())
}
