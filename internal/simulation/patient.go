package simulation

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"painburden/internal/stats"
)

// Attack is a single pain episode.
type Attack struct {
	Duration  float64 `json:"duration"`  // minutes
	Intensity float64 `json:"intensity"` // peak, on the 0-10 scale
}

// Patient is one simulated sufferer and the attacks of one simulated year.
// A Patient is immutable once generated.
type Patient struct {
	chronic bool
	treated bool
	attacks []Attack
	minutes stats.Profile
}

const (
	minutesPerDay = 24 * 60
	daysPerYear   = 365

	minAttackMinutes = 5.0
	maxAttackMinutes = 240.0
)

// attackModel holds the per-trait distribution parameters of a year of attacks.
type attackModel struct {
	attacksPerDay  float64
	medianDuration float64
	durationSigma  float64
	intensityAlpha float64
	intensityBeta  float64
}

func modelFor(chronic, treated bool) attackModel {
	m := attackModel{
		attacksPerDay:  1.6,
		medianDuration: 60,
		durationSigma:  0.45,
		intensityAlpha: 8,
		intensityBeta:  2,
	}
	if chronic {
		m.attacksPerDay = 2.0
	}
	if treated {
		m.medianDuration = 30
		m.durationSigma = 0.5
		m.intensityAlpha = 5
		m.intensityBeta = 3
	}
	return m
}

// GeneratePatient draws one year of attacks for a patient with the given
// traits. All randomness comes from rng, so equal rng states give equal patients.
func GeneratePatient(chronic, treated bool, rng *rand.Rand) Patient {
	m := modelFor(chronic, treated)

	days := activeDays(chronic, rng)
	perDay := distuv.Poisson{Lambda: m.attacksPerDay, Src: rng}
	duration := distuv.LogNormal{Mu: math.Log(m.medianDuration), Sigma: m.durationSigma, Src: rng}
	intensity := distuv.Beta{Alpha: m.intensityAlpha, Beta: m.intensityBeta, Src: rng}

	var attacks []Attack
	for d := 0; d < days; d++ {
		n := int(perDay.Rand())
		remaining := float64(minutesPerDay)
		for a := 0; a < n && remaining > 0; a++ {
			dur := math.Min(clip(duration.Rand(), minAttackMinutes, maxAttackMinutes), remaining)
			remaining -= dur
			attacks = append(attacks, Attack{
				Duration:  dur,
				Intensity: stats.MaxIntensity * intensity.Rand(),
			})
		}
	}

	return newPatient(chronic, treated, attacks)
}

func newPatient(chronic, treated bool, attacks []Attack) Patient {
	p := Patient{chronic: chronic, treated: treated, attacks: attacks}
	for _, a := range attacks {
		p.minutes[stats.BucketIndex(a.Intensity)] += a.Duration
	}
	return p
}

// activeDays is the number of days in the year on which attacks can occur.
func activeDays(chronic bool, rng *rand.Rand) int {
	if chronic {
		d := distuv.Normal{Mu: 300, Sigma: 30, Src: rng}.Rand()
		return int(math.Round(clip(d, 270, daysPerYear)))
	}

	bouts := 1 + int(distuv.Poisson{Lambda: 0.3, Src: rng}.Rand())
	bout := distuv.Normal{Mu: 60, Sigma: 15, Src: rng}
	total := 0.0
	for i := 0; i < bouts; i++ {
		total += clip(bout.Rand(), 14, 120)
	}
	return int(math.Round(math.Min(total, daysPerYear)))
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func (p Patient) Chronic() bool { return p.chronic }
func (p Patient) Treated() bool { return p.treated }

// Attacks returns a copy of the patient's attacks.
func (p Patient) Attacks() []Attack {
	out := make([]Attack, len(p.attacks))
	copy(out, p.attacks)
	return out
}

// IntensityMinutes is the patient's minutes in pain per intensity bucket.
func (p Patient) IntensityMinutes() stats.Profile {
	return p.minutes
}

func (p Patient) TotalAttacks() int {
	return len(p.attacks)
}

// TotalDuration is the summed attack duration in minutes.
func (p Patient) TotalDuration() float64 {
	total := 0.0
	for _, a := range p.attacks {
		total += a.Duration
	}
	return total
}

// AverageIntensity is the duration-weighted mean peak intensity, 0 without attacks.
func (p Patient) AverageIntensity() float64 {
	var weighted, total float64
	for _, a := range p.attacks {
		weighted += a.Duration * a.Intensity
		total += a.Duration
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}
