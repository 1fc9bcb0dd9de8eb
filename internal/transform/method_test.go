package transform

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painburden/internal/stats"
)

func allNonLinear(t *testing.T) []Method {
	t.Helper()
	power, err := NewPower(3, 1)
	require.NoError(t, err)
	exp, err := NewExponential(math.E, 1, 1)
	require.NoError(t, err)
	taylor, err := NewTaylor(math.E, 1, 6, 1)
	require.NoError(t, err)
	return []Method{PiecewiseLinear{MaxValue: 1}, power, exp, taylor}
}

func TestNew_Kinds(t *testing.T) {
	for _, k := range Kinds {
		p := DefaultParams()
		p.Method = string(k)
		m, err := New(p)
		require.NoError(t, err, "kind %s", k)
		assert.Equal(t, k, m.Kind())
	}
}

func TestNew_EmptyMethodDefaultsToLinear(t *testing.T) {
	m, err := New(Params{})
	require.NoError(t, err)
	assert.Equal(t, KindLinear, m.Kind())
}

func TestNew_RejectsOutOfDomain(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(p *Params)
		field string
	}{
		{"UnknownMethod", func(p *Params) { p.Method = "logarithmic" }, "method"},
		{"PowerBelowOne", func(p *Params) { p.Method = "power"; p.Power = 0.5 }, "power"},
		{"BaseOne", func(p *Params) { p.Method = "exponential"; p.Base = 1 }, "base"},
		{"NegativeScale", func(p *Params) { p.Method = "exponential"; p.ScalingFactor = -1 }, "scaling_factor"},
		{"TaylorOrderOne", func(p *Params) { p.Method = "taylor"; p.TaylorOrder = 1 }, "taylor_order"},
		{"TaylorOrderAboveCap", func(p *Params) { p.Method = "taylor"; p.TaylorOrder = MaxTaylorOrder + 1 }, "taylor_order"},
		{"TaylorOrderHuge", func(p *Params) { p.Method = "taylor"; p.TaylorOrder = 2_000_000_000 }, "taylor_order"},
		{"TaylorBaseBelowOne", func(p *Params) { p.Method = "taylor"; p.Base = 0.5 }, "base"},
		{"ZeroMaxValue", func(p *Params) { p.Method = "power"; p.MaxValue = 0 }, "max_value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mod(&p)
			_, err := New(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParams))

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestCurves_ZeroAtOriginAndMonotonic(t *testing.T) {
	for _, m := range allNonLinear(t) {
		t.Run(string(m.Kind()), func(t *testing.T) {
			curve := Curve(m)
			weights := Weights(m)

			assert.Equal(t, 0.0, curve[0])
			assert.Equal(t, 0.0, weights[0])
			assert.InDelta(t, 10.0, curve[100], 1e-9)
			assert.InDelta(t, 1.0, weights[100], 1e-9)

			for i := 1; i < stats.Buckets; i++ {
				assert.GreaterOrEqual(t, curve[i], curve[i-1], "curve must not decrease at bucket %d", i)
				assert.GreaterOrEqual(t, weights[i]+1e-12, weights[i-1], "weight must not decrease at bucket %d", i)
			}
		})
	}
}

func TestPiecewiseLinear_ContinuousAtMidpoint(t *testing.T) {
	m := PiecewiseLinear{MaxValue: 2}
	below := m.Curve(Midpoint - 1e-9)
	above := m.Curve(Midpoint + 1e-9)
	assert.InDelta(t, below, above, 1e-6)
	assert.InDelta(t, 20.0, m.Curve(10), 1e-12)

	lowSlopeSeen := (m.Curve(2) - m.Curve(1)) / 1
	highSlopeSeen := (m.Curve(9) - m.Curve(8)) / 1
	assert.Greater(t, highSlopeSeen, lowSlopeSeen)
}

func TestTaylor_OrderTwoIsLinear(t *testing.T) {
	m, err := NewTaylor(math.E, 1, 2, 1)
	require.NoError(t, err)
	for _, x := range []float64{0.1, 2.5, 7.3, 10} {
		assert.InDelta(t, x, m.Curve(x), 1e-9)
	}
}

func TestTaylor_MaxOrderMatchesExponential(t *testing.T) {
	p := DefaultParams()
	p.Method = string(KindTaylor)
	p.Base = 20
	p.ScalingFactor = 2
	p.TaylorOrder = MaxTaylorOrder

	start := time.Now()
	m, err := New(p)
	require.NoError(t, err)
	exp, err := NewExponential(20, 2, 1)
	require.NoError(t, err)

	curve := Curve(m)
	want := Curve(exp)
	assert.Less(t, time.Since(start), 2*time.Second)
	for i := 1; i < stats.Buckets; i++ {
		assert.InDelta(t, want[i], curve[i], 1e-9*math.Max(1, want[i]), "bucket %d", i)
	}
}
