package comparator

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is wrapped by every comparator validation failure.
var ErrInvalidParams = errors.New("invalid comparator parameters")

// ConfigError names the offending comparator parameter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("comparator %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidParams
}

// Params describes the comparator condition through summary statistics only.
type Params struct {
	Name                 string  `yaml:"name" json:"name"`
	PrevalencePer100k    float64 `yaml:"prevalence_per_100k" json:"prevalence_per_100k"`
	FractionOfYearInPain float64 `yaml:"fraction_of_year_in_pain" json:"fraction_of_year_in_pain"`
	Mean                 float64 `yaml:"mean" json:"mean"`
	Median               float64 `yaml:"median" json:"median"`
	StdDev               float64 `yaml:"std" json:"std"`
}

// DefaultParams returns the multiple sclerosis pain figures used by default.
func DefaultParams() Params {
	return Params{
		Name:                 "Multiple Sclerosis",
		PrevalencePer100k:    37,
		FractionOfYearInPain: 0.25,
		Mean:                 1.5,
		Median:               3.5,
		StdDev:               1.8,
	}
}

// Validate checks the ranges of every field.
func (p Params) Validate() error {
	check := func(field string, ok bool, v float64, want string) error {
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("must be %s, got %v", want, v)}
		}
		return nil
	}

	if err := check("prevalence_per_100k", p.PrevalencePer100k >= 0, p.PrevalencePer100k, ">= 0"); err != nil {
		return err
	}
	if err := check("fraction_of_year_in_pain", p.FractionOfYearInPain >= 0 && p.FractionOfYearInPain <= 1, p.FractionOfYearInPain, "within [0, 1]"); err != nil {
		return err
	}
	if err := check("mean", p.Mean >= 0 && p.Mean <= 10, p.Mean, "within [0, 10]"); err != nil {
		return err
	}
	if err := check("median", p.Median >= 0 && p.Median <= 10, p.Median, "within [0, 10]"); err != nil {
		return err
	}
	return check("std", p.StdDev > 0, p.StdDev, "> 0")
}
