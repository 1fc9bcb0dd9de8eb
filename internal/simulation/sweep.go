package simulation

import (
	"fmt"
	"math"

	"painburden/internal/stats"
	"painburden/internal/transform"
)

// SweepPoint is the burden above a threshold for one Taylor order.
type SweepPoint struct {
	Order            int     `json:"order"`
	PrimaryBurden    float64 `json:"primary_burden"`
	ComparatorBurden float64 `json:"comparator_burden"`
	Ratio            float64 `json:"ratio"`
	Defined          bool    `json:"defined"`
}

// SweepResult holds a Taylor-order sweep at a fixed threshold.
type SweepResult struct {
	Threshold float64      `json:"threshold"`
	Points    []SweepPoint `json:"points"`
	// CrossingOrder is the first order whose primary burden exceeds the
	// comparator's, or 0 when none does.
	CrossingOrder int           `json:"crossing_order"`
	CrossingCurve stats.Profile `json:"crossing_curve"`
}

// RatioMatrix is log10(primary/comparator) per threshold (rows) and order (columns).
type RatioMatrix struct {
	Thresholds []float64   `json:"thresholds"`
	Orders     []int       `json:"orders"`
	Log10Ratio [][]float64 `json:"log10_ratio"`
	Defined    [][]bool    `json:"defined"`
}

// DefaultSweepOrders returns orders 2 through 35.
func DefaultSweepOrders() []int {
	return orderRange(2, 35)
}

// DefaultMatrixOrders returns orders 2 through 24.
func DefaultMatrixOrders() []int {
	return orderRange(2, 24)
}

// DefaultThresholds returns 0 through 10 in steps of 0.5.
func DefaultThresholds() []float64 {
	out := make([]float64, 0, 21)
	for i := 0; i <= 20; i++ {
		out = append(out, float64(i)*0.5)
	}
	return out
}

func orderRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out
}

// taylorBurden holds the adjusted profiles for one order; the burden above
// any threshold is a suffix sum of them.
type taylorBurden struct {
	curve      stats.Profile
	primary    stats.Profile
	comparator stats.Profile
}

func taylorAt(r *Results, order int) (taylorBurden, error) {
	p := r.Config.Transformation
	m, err := transform.NewTaylor(p.Base, p.ScalingFactor, order, p.MaxValue)
	if err != nil {
		return taylorBurden{}, err
	}

	var b taylorBurden
	for _, g := range r.Groups {
		b.primary = b.primary.Add(transform.Apply(m, g.PersonYears).Adjusted)
	}
	b.comparator = transform.Apply(m, r.Comparator.PersonYears).Adjusted
	b.curve = transform.Curve(m)
	return b, nil
}

// TaylorSweep compares total adjusted person-years at or above threshold
// between the simulated population and the comparator for every order,
// using the base, scaling and max value of the bundle's configuration.
// The bundle is only read.
func TaylorSweep(r *Results, threshold float64, orders []int) (SweepResult, error) {
	if r == nil {
		return SweepResult{}, ErrNoRun
	}
	if len(orders) == 0 {
		orders = DefaultSweepOrders()
	}
	idx := stats.ThresholdIndex(threshold)

	out := SweepResult{Threshold: threshold, Points: make([]SweepPoint, 0, len(orders))}
	for _, n := range orders {
		b, err := taylorAt(r, n)
		if err != nil {
			return SweepResult{}, fmt.Errorf("taylor order %d: %w", n, err)
		}
		pt := SweepPoint{
			Order:            n,
			PrimaryBurden:    b.primary.SumFrom(idx),
			ComparatorBurden: b.comparator.SumFrom(idx),
		}
		if pt.ComparatorBurden > 0 {
			pt.Ratio = pt.PrimaryBurden / pt.ComparatorBurden
			pt.Defined = true
		}
		if out.CrossingOrder == 0 && pt.PrimaryBurden > pt.ComparatorBurden {
			out.CrossingOrder = n
			out.CrossingCurve = b.curve
		}
		out.Points = append(out.Points, pt)
	}
	return out, nil
}

// BurdenRatioMatrix evaluates log10(primary/comparator) over a grid of
// thresholds and Taylor orders. Cells where either burden is zero are left
// undefined.
func BurdenRatioMatrix(r *Results, thresholds []float64, orders []int) (RatioMatrix, error) {
	if r == nil {
		return RatioMatrix{}, ErrNoRun
	}
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds()
	}
	if len(orders) == 0 {
		orders = DefaultMatrixOrders()
	}

	burdens := make([]taylorBurden, len(orders))
	for j, n := range orders {
		b, err := taylorAt(r, n)
		if err != nil {
			return RatioMatrix{}, fmt.Errorf("taylor order %d: %w", n, err)
		}
		burdens[j] = b
	}

	m := RatioMatrix{
		Thresholds: thresholds,
		Orders:     orders,
		Log10Ratio: make([][]float64, len(thresholds)),
		Defined:    make([][]bool, len(thresholds)),
	}
	for i, t := range thresholds {
		idx := stats.ThresholdIndex(t)
		m.Log10Ratio[i] = make([]float64, len(orders))
		m.Defined[i] = make([]bool, len(orders))
		for j, b := range burdens {
			primary, comp := b.primary.SumFrom(idx), b.comparator.SumFrom(idx)
			if primary <= 0 || comp <= 0 {
				continue
			}
			ratio := math.Log10(primary / comp)
			if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
				continue
			}
			m.Log10Ratio[i][j] = ratio
			m.Defined[i][j] = true
		}
	}
	return m, nil
}
