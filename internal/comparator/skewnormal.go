package comparator

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// SkewNormal is the skew-normal distribution with location Xi, scale Omega
// and shape Alpha. Alpha < 0 skews the mass to the left, Alpha > 0 to the right.
type SkewNormal struct {
	Xi    float64 `json:"xi"`
	Omega float64 `json:"omega"`
	Alpha float64 `json:"alpha"`
}

func (s SkewNormal) delta() float64 {
	return s.Alpha / math.Sqrt(1+s.Alpha*s.Alpha)
}

// Prob returns the density at x.
func (s SkewNormal) Prob(x float64) float64 {
	z := (x - s.Xi) / s.Omega
	return 2 / s.Omega * distuv.UnitNormal.Prob(z) * distuv.UnitNormal.CDF(s.Alpha*z)
}

// Mean returns the closed-form mean.
func (s SkewNormal) Mean() float64 {
	return s.Xi + s.Omega*s.delta()*math.Sqrt(2/math.Pi)
}

// StdDev returns the closed-form standard deviation.
func (s SkewNormal) StdDev() float64 {
	d := s.delta()
	return s.Omega * math.Sqrt(1-2*d*d/math.Pi)
}

// Skewness returns the closed-form skewness; its sign matches Alpha.
func (s SkewNormal) Skewness() float64 {
	d := s.delta()
	m := d * math.Sqrt(2/math.Pi)
	return (4 - math.Pi) / 2 * math.Pow(m, 3) / math.Pow(1-m*m, 1.5)
}

// tail is how many scale units beyond Xi the density is treated as zero.
const tail = 12.0

// CDF integrates the density from the far left tail up to x.
func (s SkewNormal) CDF(x float64) float64 {
	lo := s.Xi - tail*s.Omega
	if x <= lo {
		return 0
	}
	// The Phi(alpha*z) factor turns into a step at Xi for large |Alpha|, so
	// each side of Xi is integrated separately.
	var v float64
	if x <= s.Xi {
		v = quad.Fixed(s.Prob, lo, x, 64, nil, 0)
	} else {
		v = quad.Fixed(s.Prob, lo, s.Xi, 64, nil, 0) + quad.Fixed(s.Prob, s.Xi, x, 64, nil, 0)
	}
	return math.Min(1, math.Max(0, v))
}

// Median solves CDF(x) = 0.5 by bisection.
func (s SkewNormal) Median() float64 {
	lo, hi := s.Xi-tail*s.Omega, s.Xi+tail*s.Omega
	for i := 0; i < 40; i++ {
		mid := (lo + hi) / 2
		if s.CDF(mid) < 0.5 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
