package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"painburden/internal/comparator"
	"painburden/internal/stats"
	"painburden/internal/transform"
)

// ErrNoRun is returned when results are requested before any run completed.
var ErrNoRun = errors.New("no simulation has been run")

// AdjustedGroup holds one subgroup's profiles after transformation.
type AdjustedGroup struct {
	Subgroup       Subgroup      `json:"subgroup"`
	PersonYears    stats.Profile `json:"person_years"`
	AverageMinutes stats.Profile `json:"average_minutes"`
}

// Adjustment is the output of the transform phase.
type Adjustment struct {
	Params                transform.Params `json:"params"`
	TransformedGrid       stats.Profile    `json:"transformed_grid"`
	Groups                []AdjustedGroup  `json:"groups"`
	ComparatorPersonYears stats.Profile    `json:"comparator_person_years"`
	Saturated             int              `json:"saturated"`
}

// Adjust applies the transformation described by p to every subgroup and to
// the comparator. It is pure and safe to call concurrently.
func Adjust(groups []GroupResult, comp comparator.Burden, p transform.Params) (Adjustment, error) {
	m, err := transform.New(p)
	if err != nil {
		return Adjustment{}, err
	}
	return adjustWith(groups, comp, m, p), nil
}

func adjustWith(groups []GroupResult, comp comparator.Burden, m transform.Method, p transform.Params) Adjustment {
	a := Adjustment{
		Params:          p,
		TransformedGrid: transform.Curve(m),
		Groups:          make([]AdjustedGroup, 0, len(groups)),
	}
	for _, g := range groups {
		py := transform.Apply(m, g.PersonYears)
		avg := transform.Apply(m, g.AverageMinutes)
		a.Saturated += py.Saturated + avg.Saturated
		a.Groups = append(a.Groups, AdjustedGroup{
			Subgroup:       g.Subgroup,
			PersonYears:    py.Adjusted,
			AverageMinutes: avg.Adjusted,
		})
	}
	c := transform.Apply(m, comp.PersonYears)
	a.ComparatorPersonYears = c.Adjusted
	a.Saturated += c.Saturated
	return a
}

// Results is one published, immutable simulation bundle.
type Results struct {
	RunID       string            `json:"run_id"`
	Seed        uint64            `json:"seed"`
	GeneratedAt time.Time         `json:"generated_at"`
	Config      Config            `json:"config"`
	Grid        stats.Profile     `json:"grid"`
	Groups      []GroupResult     `json:"groups"`
	Comparator  comparator.Burden `json:"comparator"`
	Adjusted    Adjustment        `json:"adjusted"`
}

// Group returns the raw and adjusted results of one subgroup.
func (r *Results) Group(s Subgroup) (GroupResult, AdjustedGroup, bool) {
	for i, g := range r.Groups {
		if g.Subgroup == s {
			return g, r.Adjusted.Groups[i], true
		}
	}
	return GroupResult{}, AdjustedGroup{}, false
}

// Engine runs the generate, aggregate and transform pipeline and publishes
// its results. Only the transform phase can be re-entered.
type Engine struct {
	mu      sync.RWMutex
	cfg     Config
	workers int
	latest  *Results
}

// NewEngine validates cfg. workers <= 0 means one worker per CPU.
func NewEngine(cfg Config, workers int) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, workers: workers}, nil
}

// Config returns a copy of the configuration the next run will use.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// SetConfig replaces the configuration for subsequent runs. Published results
// are unaffected.
func (e *Engine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	return nil
}

// Preview reports subgroup sizes for the current configuration.
func (e *Engine) Preview() Preview {
	return PreviewPopulation(e.Config())
}

// Run executes the full pipeline and publishes a new bundle.
func (e *Engine) Run(ctx context.Context, seed uint64) (*Results, error) {
	cfg := e.Config()
	start := time.Now()

	method, err := transform.New(cfg.Transformation)
	if err != nil {
		return nil, err
	}

	pop, err := Generate(ctx, cfg, seed, e.workers)
	if err != nil {
		return nil, err
	}
	groups := Aggregate(pop)
	log.Debug().Int("groups", len(groups)).Msg("Population aggregated")

	comp, err := comparator.Estimate(cfg.Comparator, float64(cfg.WorldAdultPopulation))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	log.Debug().
		Float64("xi", comp.Fit.Distribution.Xi).
		Float64("omega", comp.Fit.Distribution.Omega).
		Float64("alpha", comp.Fit.Distribution.Alpha).
		Float64("loss", comp.Fit.Loss).
		Msg("Comparator distribution fitted")

	res := &Results{
		RunID:       uuid.NewString(),
		Seed:        seed,
		GeneratedAt: time.Now().UTC(),
		Config:      cfg,
		Grid:        stats.Grid(),
		Groups:      groups,
		Comparator:  comp,
		Adjusted:    adjustWith(groups, comp, method, cfg.Transformation),
	}
	logSaturation(res)

	e.mu.Lock()
	e.latest = res
	e.mu.Unlock()

	log.Info().
		Str("run_id", res.RunID).
		Uint64("seed", seed).
		Str("method", cfg.Transformation.Method).
		Dur("elapsed", time.Since(start)).
		Msg("Simulation run completed")
	return res, nil
}

// Retransform recomputes the comparator and the transform phase on the cached
// aggregate of the latest run, then publishes the result as a new bundle. The
// raw profiles are shared with the previous bundle, never recomputed.
func (e *Engine) Retransform(tp transform.Params, cp comparator.Params) (*Results, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.latest == nil {
		return nil, ErrNoRun
	}

	cfg := e.latest.Config
	cfg.Transformation = tp
	cfg.Comparator = cp
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	method, err := transform.New(tp)
	if err != nil {
		return nil, err
	}

	comp := e.latest.Comparator
	if cp != e.latest.Config.Comparator {
		comp, err = comparator.Estimate(cp, float64(cfg.WorldAdultPopulation))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	res := &Results{
		RunID:       e.latest.RunID,
		Seed:        e.latest.Seed,
		GeneratedAt: time.Now().UTC(),
		Config:      cfg,
		Grid:        e.latest.Grid,
		Groups:      e.latest.Groups,
		Comparator:  comp,
		Adjusted:    adjustWith(e.latest.Groups, comp, method, tp),
	}
	logSaturation(res)

	e.latest = res
	e.cfg.Transformation = tp
	e.cfg.Comparator = cp

	log.Info().
		Str("run_id", res.RunID).
		Str("method", tp.Method).
		Msg("Results retransformed")
	return res, nil
}

// Snapshot returns the latest published bundle.
func (e *Engine) Snapshot() (*Results, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.latest == nil {
		return nil, ErrNoRun
	}
	return e.latest, nil
}

func logSaturation(r *Results) {
	if r.Adjusted.Saturated > 0 {
		log.Warn().
			Str("run_id", r.RunID).
			Str("method", r.Adjusted.Params.Method).
			Int("clamped", r.Adjusted.Saturated).
			Msg("Transformation saturated; values clamped to stay finite")
	}
}
