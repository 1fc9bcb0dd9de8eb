package simulation

import "fmt"

// Subgroup is one of the four disjoint partitions of the affected population.
type Subgroup int

const (
	EpisodicTreated Subgroup = iota
	EpisodicUntreated
	ChronicTreated
	ChronicUntreated
)

// AllSubgroups lists the partitions in reporting order.
var AllSubgroups = []Subgroup{EpisodicTreated, EpisodicUntreated, ChronicTreated, ChronicUntreated}

var subgroupNames = map[Subgroup]string{
	EpisodicTreated:   "Episodic Treated",
	EpisodicUntreated: "Episodic Untreated",
	ChronicTreated:    "Chronic Treated",
	ChronicUntreated:  "Chronic Untreated",
}

func (s Subgroup) String() string {
	if name, ok := subgroupNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Subgroup(%d)", int(s))
}

// Chronic reports whether the subgroup holds chronic sufferers.
func (s Subgroup) Chronic() bool {
	return s == ChronicTreated || s == ChronicUntreated
}

// Treated reports whether the subgroup holds treated sufferers.
func (s Subgroup) Treated() bool {
	return s == EpisodicTreated || s == ChronicTreated
}

// MarshalText encodes the subgroup by name, so JSON keys and values stay readable.
func (s Subgroup) MarshalText() ([]byte, error) {
	if _, ok := subgroupNames[s]; !ok {
		return nil, fmt.Errorf("unknown subgroup %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a subgroup name.
func (s *Subgroup) UnmarshalText(text []byte) error {
	parsed, err := ParseSubgroup(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSubgroup looks a subgroup up by its display name.
func ParseSubgroup(name string) (Subgroup, error) {
	for s, n := range subgroupNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown subgroup %q", name)
}

// shares returns the chronicity and treatment shares of the subgroup.
func (s Subgroup) shares(c Config) (float64, float64) {
	chronicity := c.PropEpisodic
	if s.Chronic() {
		chronicity = c.PropChronic
	}
	treatment := c.PropUntreated
	if s.Treated() {
		treatment = c.PropTreated
	}
	return chronicity, treatment
}
