package simulation

import (
	"math/rand/v2"
	"testing"

	"painburden/internal/stats"
)

func samplePatients(chronic, treated bool, n int) []Patient {
	out := make([]Patient, n)
	for i := range out {
		out[i] = GeneratePatient(chronic, treated, rand.New(rand.NewPCG(99, uint64(i))))
	}
	return out
}

func meanOf(patients []Patient, f func(Patient) float64) float64 {
	total := 0.0
	for _, p := range patients {
		total += f(p)
	}
	return total / float64(len(patients))
}

func TestGeneratePatient_Bounds(t *testing.T) {
	for _, p := range samplePatients(true, false, 50) {
		for _, a := range p.Attacks() {
			if a.Duration <= 0 || a.Duration > maxAttackMinutes {
				t.Fatalf("Expected duration in (0, %v], got %v", maxAttackMinutes, a.Duration)
			}
			if a.Intensity < 0 || a.Intensity > stats.MaxIntensity {
				t.Fatalf("Expected intensity in [0, 10], got %v", a.Intensity)
			}
		}
		if !p.IntensityMinutes().NonNegative() {
			t.Fatal("Expected non-negative intensity minutes")
		}
	}
}

func TestGeneratePatient_Views(t *testing.T) {
	p := GeneratePatient(false, true, rand.New(rand.NewPCG(1, 2)))

	minutes := p.IntensityMinutes()
	if diff := minutes.Sum() - p.TotalDuration(); diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Expected bucketed minutes %v to equal total duration %v", minutes.Sum(), p.TotalDuration())
	}
	if p.TotalAttacks() != len(p.Attacks()) {
		t.Errorf("Expected %d attacks, got %d", len(p.Attacks()), p.TotalAttacks())
	}

	attacks := p.Attacks()
	if len(attacks) > 0 {
		attacks[0].Duration = -1
		if p.Attacks()[0].Duration == -1 {
			t.Error("Expected Attacks to return a copy")
		}
	}
}

func TestGeneratePatient_Deterministic(t *testing.T) {
	a := GeneratePatient(true, true, rand.New(rand.NewPCG(5, 5)))
	b := GeneratePatient(true, true, rand.New(rand.NewPCG(5, 5)))
	if a.IntensityMinutes() != b.IntensityMinutes() || a.TotalAttacks() != b.TotalAttacks() {
		t.Error("Expected equal seeds to give equal patients")
	}
}

func TestGeneratePatient_TraitOrdering(t *testing.T) {
	const n = 200
	minutes := func(p Patient) float64 { return p.TotalDuration() }
	intensity := func(p Patient) float64 { return p.AverageIntensity() }

	episodicTreated := samplePatients(false, true, n)
	episodicUntreated := samplePatients(false, false, n)
	chronicTreated := samplePatients(true, true, n)
	chronicUntreated := samplePatients(true, false, n)

	if meanOf(episodicTreated, minutes) >= meanOf(episodicUntreated, minutes) {
		t.Error("Expected treated episodic patients to spend fewer minutes in pain")
	}
	if meanOf(chronicTreated, minutes) >= meanOf(chronicUntreated, minutes) {
		t.Error("Expected treated chronic patients to spend fewer minutes in pain")
	}
	if meanOf(chronicUntreated, minutes) <= meanOf(episodicUntreated, minutes) {
		t.Error("Expected chronic patients to spend more minutes in pain than episodic")
	}
	if meanOf(chronicTreated, minutes) <= meanOf(episodicTreated, minutes) {
		t.Error("Expected chronic treated patients to exceed episodic treated")
	}
	if meanOf(episodicTreated, intensity) >= meanOf(episodicUntreated, intensity) {
		t.Error("Expected treatment to lower average intensity")
	}
}

func TestPatient_AverageIntensity(t *testing.T) {
	empty := newPatient(false, false, nil)
	if empty.AverageIntensity() != 0 || empty.TotalAttacks() != 0 {
		t.Error("Expected zero averages without attacks")
	}

	p := newPatient(false, false, []Attack{
		{Duration: 30, Intensity: 4},
		{Duration: 10, Intensity: 8},
	})
	if got := p.AverageIntensity(); got != 5 {
		t.Errorf("Expected duration-weighted intensity 5, got %v", got)
	}
	m := p.IntensityMinutes()
	if m[40] != 30 || m[80] != 10 {
		t.Errorf("Expected 30 minutes at 4.0 and 10 at 8.0, got %v and %v", m[40], m[80])
	}
}
