package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Sum adds every bucket of the profile.
func (p Profile) Sum() float64 {
	return floats.Sum(p[:])
}

// SumFrom adds the buckets from index idx (inclusive) to the end.
func (p Profile) SumFrom(idx int) float64 {
	if idx >= Buckets {
		return 0
	}
	if idx < 0 {
		idx = 0
	}
	return floats.Sum(p[idx:])
}

// Scale returns a copy of the profile multiplied by c.
func (p Profile) Scale(c float64) Profile {
	floats.Scale(c, p[:])
	return p
}

// Add returns the bucket-wise sum of p and q.
func (p Profile) Add(q Profile) Profile {
	floats.Add(p[:], q[:])
	return p
}

// Max returns the largest bucket value.
func (p Profile) Max() float64 {
	return floats.Max(p[:])
}

// NonNegative reports whether every bucket is finite and >= 0.
func (p Profile) NonNegative() bool {
	for _, v := range p {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SumProfiles adds a set of profiles bucket by bucket.
func SumProfiles(profiles ...Profile) Profile {
	var out Profile
	for _, p := range profiles {
		out = out.Add(p)
	}
	return out
}

// Quadrature combines independent standard deviations: sqrt(sum(std^2)) over
// the buckets from idx onwards, across all given profiles.
func Quadrature(idx int, stds ...Profile) float64 {
	if idx < 0 {
		idx = 0
	}
	sumSq := 0.0
	for _, s := range stds {
		for i := idx; i < Buckets; i++ {
			sumSq += s[i] * s[i]
		}
	}
	return math.Sqrt(sumSq)
}
