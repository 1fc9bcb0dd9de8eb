package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// SubgroupSize is the true and sampled size of one subgroup.
type SubgroupSize struct {
	Subgroup  Subgroup `json:"subgroup"`
	TrueCount int64    `json:"true_count"`
	Sampled   int      `json:"sampled"`
}

// PreviewGroup is one row of a Preview.
type PreviewGroup struct {
	Name       string `json:"name"`
	TrueCount  int64  `json:"true_count"`
	Sampled    int    `json:"sampled"`
	Percentage int    `json:"percentage"`
}

// Preview summarizes the population a configuration would simulate.
type Preview struct {
	TotalSufferers int64          `json:"total_sufferers"`
	TotalSimulated int            `json:"total_simulated"`
	Groups         []PreviewGroup `json:"groups"`
}

// Sizes partitions the affected population into the four subgroups.
// Counts are truncated, so they may sum to slightly less than the total.
func Sizes(cfg Config) []SubgroupSize {
	total := cfg.TotalSufferers()
	fraction := cfg.SamplingFraction()

	sizes := make([]SubgroupSize, 0, len(AllSubgroups))
	for _, s := range AllSubgroups {
		chronicity, treatment := s.shares(cfg)
		trueCount := int64(total * chronicity * treatment)
		sizes = append(sizes, SubgroupSize{
			Subgroup:  s,
			TrueCount: trueCount,
			Sampled:   int(float64(trueCount) * fraction),
		})
	}
	return sizes
}

// PreviewPopulation computes subgroup sizes without sampling anyone.
func PreviewPopulation(cfg Config) Preview {
	sizes := Sizes(cfg)

	var sum int64
	for _, s := range sizes {
		sum += s.TrueCount
	}
	totalSimulated := int(float64(sum) * cfg.SamplingFraction())

	p := Preview{
		TotalSufferers: int64(cfg.TotalSufferers()),
		TotalSimulated: totalSimulated,
		Groups:         make([]PreviewGroup, 0, len(sizes)),
	}
	for _, s := range sizes {
		pct := 0
		if totalSimulated > 0 {
			pct = int(math.Round(float64(s.Sampled) / float64(totalSimulated) * 100))
		}
		p.Groups = append(p.Groups, PreviewGroup{
			Name:       s.Subgroup.String(),
			TrueCount:  s.TrueCount,
			Sampled:    s.Sampled,
			Percentage: pct,
		})
	}
	return p
}

// Population is the generated sample, grouped by subgroup in AllSubgroups order.
type Population struct {
	Seed     uint64
	Sizes    []SubgroupSize
	Patients [][]Patient
}

// Group returns the patients of one subgroup.
func (p *Population) Group(s Subgroup) []Patient {
	for i, size := range p.Sizes {
		if size.Subgroup == s {
			return p.Patients[i]
		}
	}
	return nil
}

// Generate samples every subgroup. Patient i (counted across all subgroups in
// order) draws from a PCG stream keyed by (seed, i), so the result does not
// depend on the number of workers. workers <= 0 means runtime.NumCPU().
func Generate(ctx context.Context, cfg Config, seed uint64, workers int) (*Population, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	sizes := Sizes(cfg)
	pop := &Population{
		Seed:     seed,
		Sizes:    sizes,
		Patients: make([][]Patient, len(sizes)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var index uint64
	for gi, size := range sizes {
		group := make([]Patient, size.Sampled)
		pop.Patients[gi] = group
		chronic, treated := size.Subgroup.Chronic(), size.Subgroup.Treated()

		for i := range group {
			stream := index
			index++
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				rng := rand.New(rand.NewPCG(seed, stream))
				group[i] = GeneratePatient(chronic, treated, rng)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate population: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generate population: %w", err)
	}

	log.Debug().
		Uint64("seed", seed).
		Uint64("patients", index).
		Int("workers", workers).
		Msg("Population generated")
	return pop, nil
}
