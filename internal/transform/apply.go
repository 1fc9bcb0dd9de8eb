package transform

import (
	"math"

	"painburden/internal/stats"
)

// Result is the output of one transformation: the adjusted profile and the
// transformed grid, both the same length as the raw grid.
type Result struct {
	Method      Kind          `json:"method"`
	Adjusted    stats.Profile `json:"adjusted"`
	Transformed stats.Profile `json:"transformed"`
	// Saturated counts the values clamped to stay finite and non-negative.
	Saturated int `json:"saturated"`
}

// Curve evaluates the method over the whole grid and returns the transformed grid.
func Curve(m Method) stats.Profile {
	curve, _, _ := evaluate(m)
	return curve
}

// Weights returns the per-bucket multiplier T(x)/x. The multiplier at x = 0 is
// 1 for the linear method and 0 for every other method.
func Weights(m Method) stats.Profile {
	_, w, _ := evaluate(m)
	return w
}

// Apply weights a raw profile by the method. It never mutates raw and always
// returns finite, non-negative values.
func Apply(m Method, raw stats.Profile) Result {
	if m.Kind() == KindLinear {
		return Result{Method: KindLinear, Adjusted: raw, Transformed: stats.Grid()}
	}

	curve, weights, clamped := evaluate(m)

	var adjusted stats.Profile
	for i := range raw {
		v, c := saturate(raw[i] * weights[i])
		adjusted[i] = v
		clamped += c
	}

	return Result{Method: m.Kind(), Adjusted: adjusted, Transformed: curve, Saturated: clamped}
}

func evaluate(m Method) (curve, weights stats.Profile, clamped int) {
	for i := range curve {
		x := stats.Intensity(i)
		v, c := saturate(m.Curve(x))
		curve[i] = v
		clamped += c

		if x == 0 {
			if m.Kind() == KindLinear {
				weights[i] = 1
			}
			continue
		}
		w, c := saturate(v / x)
		weights[i] = w
		clamped += c
	}
	return curve, weights, clamped
}

// saturate clamps NaN and negatives to 0 and +Inf to MaxFloat64. It reports 1
// when the value had to be changed.
func saturate(v float64) (float64, int) {
	switch {
	case math.IsNaN(v):
		return 0, 1
	case math.IsInf(v, 1):
		return math.MaxFloat64, 1
	case v < 0:
		return 0, 1
	}
	return v, 0
}
