package stats

import "math"

const (
	// Buckets is the number of points on the intensity grid (0.0 to 10.0 in steps of 0.1).
	Buckets = 101
	// BinWidth is the spacing between two adjacent grid points.
	BinWidth = 0.1
	// MaxIntensity is the top of the pain scale.
	MaxIntensity = 10.0
)

// Profile holds one non-negative quantity (minutes, person-years, adjusted units)
// per intensity bucket. The array type fixes the length for the whole process and
// makes every assignment a copy.
type Profile [Buckets]float64

// Grid returns the intensity grid. Values are computed as i/10 so that every
// point is the closest float64 to its decimal label.
func Grid() Profile {
	var g Profile
	for i := range g {
		g[i] = float64(i) / 10
	}
	return g
}

// Intensity returns the grid value of bucket i.
func Intensity(i int) float64 {
	return float64(i) / 10
}

// BucketIndex maps a continuous intensity to the nearest 0.1 bucket.
// Values outside [0, 10] land in the first or last bucket.
func BucketIndex(intensity float64) int {
	if math.IsNaN(intensity) || intensity <= 0 {
		return 0
	}
	idx := int(math.Round(intensity * 10))
	if idx >= Buckets {
		return Buckets - 1
	}
	return idx
}

// ThresholdIndex returns the first bucket at or above the given intensity threshold.
func ThresholdIndex(threshold float64) int {
	if threshold <= 0 {
		return 0
	}
	idx := int(math.Round(threshold * 10))
	if idx > Buckets {
		return Buckets
	}
	return idx
}

// Slice returns the profile as a freshly allocated slice.
func (p Profile) Slice() []float64 {
	out := make([]float64, Buckets)
	copy(out, p[:])
	return out
}

// FromSlice builds a profile from the first Buckets values of s. Missing values are zero.
func FromSlice(s []float64) Profile {
	var p Profile
	copy(p[:], s)
	return p
}
