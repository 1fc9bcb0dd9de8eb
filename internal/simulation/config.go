package simulation

import (
	"errors"
	"fmt"
	"math"

	"painburden/internal/comparator"
	"painburden/internal/transform"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid simulation configuration")

// ConfigError names the offending configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// proportionTolerance is how far complementary shares may drift from 1.
const proportionTolerance = 1e-9

// Config describes one simulation scenario. Treat it as a value: copies are
// cheap and the Engine never hands out a pointer to its own copy.
type Config struct {
	WorldAdultPopulation    int64   `yaml:"world_adult_population" json:"world_adult_population"`
	AnnualPrevalencePer100k float64 `yaml:"annual_prevalence_per_100k" json:"annual_prevalence_per_100k"`
	PropChronic             float64 `yaml:"prop_chronic" json:"prop_chronic"`
	PropEpisodic            float64 `yaml:"prop_episodic" json:"prop_episodic"`
	PropTreated             float64 `yaml:"prop_treated" json:"prop_treated"`
	PropUntreated           float64 `yaml:"prop_untreated" json:"prop_untreated"`
	// PercentToSimulate is a percentage: 0.02 simulates 0.02 % of all sufferers.
	PercentToSimulate float64 `yaml:"percent_to_simulate" json:"percent_to_simulate"`

	Transformation transform.Params  `yaml:"transformation" json:"transformation"`
	Comparator     comparator.Params `yaml:"comparator" json:"comparator"`
}

// DefaultConfig returns the reference scenario.
func DefaultConfig() Config {
	return Config{
		WorldAdultPopulation:    5_728_759_000,
		AnnualPrevalencePer100k: 53,
		PropChronic:             0.20,
		PropEpisodic:            0.80,
		PropTreated:             0.43,
		PropUntreated:           0.57,
		PercentToSimulate:       0.02,
		Transformation:          transform.DefaultParams(),
		Comparator:              comparator.DefaultParams(),
	}
}

// SamplingFraction converts PercentToSimulate to a fraction.
func (c Config) SamplingFraction() float64 {
	return c.PercentToSimulate / 100
}

// TotalSufferers is the affected adult population implied by the prevalence.
func (c Config) TotalSufferers() float64 {
	return float64(c.WorldAdultPopulation) * c.AnnualPrevalencePer100k / 100_000
}

// WithChronicShare sets the chronic share and its episodic complement.
func (c Config) WithChronicShare(chronic float64) Config {
	c.PropChronic = chronic
	c.PropEpisodic = 1 - chronic
	return c
}

// WithTreatedShare sets the treated share and its untreated complement.
func (c Config) WithTreatedShare(treated float64) Config {
	c.PropTreated = treated
	c.PropUntreated = 1 - treated
	return c
}

// Validate rejects inconsistent or out-of-range settings. Nothing is clamped.
func (c Config) Validate() error {
	if c.WorldAdultPopulation <= 0 {
		return &ConfigError{Field: "world_adult_population", Reason: fmt.Sprintf("must be > 0, got %d", c.WorldAdultPopulation)}
	}
	if !finite(c.AnnualPrevalencePer100k) || c.AnnualPrevalencePer100k < 0 || c.AnnualPrevalencePer100k > 100_000 {
		return &ConfigError{Field: "annual_prevalence_per_100k", Reason: fmt.Sprintf("must be within [0, 100000], got %v", c.AnnualPrevalencePer100k)}
	}

	shares := []struct {
		name string
		v    float64
	}{
		{"prop_chronic", c.PropChronic},
		{"prop_episodic", c.PropEpisodic},
		{"prop_treated", c.PropTreated},
		{"prop_untreated", c.PropUntreated},
	}
	for _, s := range shares {
		if !finite(s.v) || s.v < 0 || s.v > 1 {
			return &ConfigError{Field: s.name, Reason: fmt.Sprintf("must be within [0, 1], got %v", s.v)}
		}
	}
	if math.Abs(c.PropChronic+c.PropEpisodic-1) > proportionTolerance {
		return &ConfigError{Field: "prop_chronic", Reason: fmt.Sprintf("chronic (%v) and episodic (%v) shares must sum to 1", c.PropChronic, c.PropEpisodic)}
	}
	if math.Abs(c.PropTreated+c.PropUntreated-1) > proportionTolerance {
		return &ConfigError{Field: "prop_treated", Reason: fmt.Sprintf("treated (%v) and untreated (%v) shares must sum to 1", c.PropTreated, c.PropUntreated)}
	}

	if !finite(c.PercentToSimulate) || c.PercentToSimulate < 0 || c.PercentToSimulate > 100 {
		return &ConfigError{Field: "percent_to_simulate", Reason: fmt.Sprintf("must be within [0, 100], got %v", c.PercentToSimulate)}
	}

	if err := c.Transformation.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Comparator.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
