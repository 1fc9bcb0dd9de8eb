package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"painburden/internal/report"
	"painburden/internal/simulation"
	"painburden/internal/stats"
	"painburden/internal/visuals"
)

func (s *Server) handlePreviewSubgroups(ctx context.Context, req *sdk.CallToolRequest, args PreviewSubgroupsInput) (*sdk.CallToolResult, PreviewSubgroupsOutput, error) {
	cfg := s.engine.Config()
	changed := false
	if args.PrevalencePer100k != nil {
		cfg.AnnualPrevalencePer100k = *args.PrevalencePer100k
		changed = true
	}
	if args.PropChronic != nil {
		cfg = cfg.WithChronicShare(*args.PropChronic)
		changed = true
	}
	if args.PropTreated != nil {
		cfg = cfg.WithTreatedShare(*args.PropTreated)
		changed = true
	}
	if args.PercentToSimulate != nil {
		cfg.PercentToSimulate = *args.PercentToSimulate
		changed = true
	}
	if changed {
		if err := s.engine.SetConfig(cfg); err != nil {
			return nil, PreviewSubgroupsOutput{}, err
		}
		log.Info().Msg("Population settings updated")
	}

	p := s.engine.Preview()
	out := PreviewSubgroupsOutput{
		TotalSufferers: p.TotalSufferers,
		TotalSimulated: p.TotalSimulated,
		Groups:         p.Groups,
	}
	if p.TotalSimulated == 0 {
		out.Guidance = append(out.Guidance, "No patients would be simulated. Increase percent_to_simulate before calling run_simulation.")
	}
	return nil, out, nil
}

func (s *Server) handleRunSimulation(ctx context.Context, req *sdk.CallToolRequest, args RunSimulationInput) (*sdk.CallToolResult, SummaryOutput, error) {
	seed := s.seed
	if args.Seed != nil {
		seed = *args.Seed
	}

	res, err := s.engine.Run(ctx, seed)
	if err != nil {
		return nil, SummaryOutput{}, fmt.Errorf("run simulation: %w", err)
	}
	out, err := s.summarize(res, false)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	out.Guidance = []string{
		"Figures are '(raw, adjusted)' pairs: adjusted units weight each intensity by the active transformation; under 'linear' they equal the raw figures.",
		"Person-years extrapolate the sampled average patient to the full subgroup; errors combine per-intensity standard deviations in quadrature.",
		"Use set_transformation to re-weight this run and run_taylor_sweep to compare it with the comparator.",
	}
	return nil, out, nil
}

func (s *Server) handleSetTransformation(ctx context.Context, req *sdk.CallToolRequest, args SetTransformationInput) (*sdk.CallToolResult, SetTransformationOutput, error) {
	current, err := s.engine.Snapshot()
	if err != nil {
		return nil, SetTransformationOutput{}, noRunError(err)
	}

	tp := current.Config.Transformation
	tp.Method = args.Method
	setFloat(&tp.MaxValue, args.MaxValue)
	setFloat(&tp.Power, args.Power)
	setFloat(&tp.Base, args.Base)
	setFloat(&tp.ScalingFactor, args.ScalingFactor)
	if args.TaylorOrder != nil {
		tp.TaylorOrder = *args.TaylorOrder
	}

	cp := current.Config.Comparator
	setFloat(&cp.PrevalencePer100k, args.ComparatorPrevalencePer100k)
	setFloat(&cp.FractionOfYearInPain, args.ComparatorFractionInPain)
	setFloat(&cp.Mean, args.ComparatorMean)
	setFloat(&cp.Median, args.ComparatorMedian)
	setFloat(&cp.StdDev, args.ComparatorStd)

	res, err := s.engine.Retransform(tp, cp)
	if err != nil {
		return nil, SetTransformationOutput{}, err
	}

	out := SetTransformationOutput{
		RunID:           res.RunID,
		Method:          res.Adjusted.Params.Method,
		TransformedGrid: res.Adjusted.TransformedGrid.Slice(),
		Saturated:       res.Adjusted.Saturated,
		Summary:         report.Summarize(res),
	}
	if res.Adjusted.Saturated > 0 {
		out.Guidance = append(out.Guidance, fmt.Sprintf("%d values exceeded the float range and were clamped; treat the affected totals as lower bounds.", res.Adjusted.Saturated))
	}
	return nil, out, nil
}

func (s *Server) handleGetSummary(ctx context.Context, req *sdk.CallToolRequest, args GetSummaryInput) (*sdk.CallToolResult, SummaryOutput, error) {
	res, err := s.engine.Snapshot()
	if err != nil {
		return nil, SummaryOutput{}, noRunError(err)
	}
	out, err := s.summarize(res, true)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleGetAdjustedBurden(ctx context.Context, req *sdk.CallToolRequest, args GetAdjustedBurdenInput) (*sdk.CallToolResult, GetAdjustedBurdenOutput, error) {
	res, err := s.engine.Snapshot()
	if err != nil {
		return nil, GetAdjustedBurdenOutput{}, noRunError(err)
	}

	threshold, err := thresholdArg(args.Threshold)
	if err != nil {
		return nil, GetAdjustedBurdenOutput{}, err
	}
	idx := stats.ThresholdIndex(threshold)

	var only *simulation.Subgroup
	if args.Subgroup != "" {
		sg, err := simulation.ParseSubgroup(args.Subgroup)
		if err != nil {
			return nil, GetAdjustedBurdenOutput{}, err
		}
		only = &sg
	}

	out := GetAdjustedBurdenOutput{
		RunID:     res.RunID,
		Method:    res.Adjusted.Params.Method,
		Threshold: threshold,
		Grid:      res.Grid.Slice(),
		Groups:    []BurdenProfile{},
		Comparator: burdenProfile(res.Comparator.Params.Name,
			res.Comparator.PersonYears, res.Adjusted.ComparatorPersonYears, idx),
	}
	for i, g := range res.Groups {
		if only != nil && g.Subgroup != *only {
			continue
		}
		out.Groups = append(out.Groups, burdenProfile(g.Subgroup.String(), g.PersonYears, res.Adjusted.Groups[i].PersonYears, idx))
	}
	if s.enableMermaidCharts {
		out.Visuals = map[string]string{
			"person_years": visuals.PersonYearsChart(res),
			"adjusted":     visuals.AdjustedChart(res),
		}
	}
	return nil, out, nil
}

func (s *Server) handleRunTaylorSweep(ctx context.Context, req *sdk.CallToolRequest, args RunTaylorSweepInput) (*sdk.CallToolResult, RunTaylorSweepOutput, error) {
	res, err := s.engine.Snapshot()
	if err != nil {
		return nil, RunTaylorSweepOutput{}, noRunError(err)
	}

	threshold, err := thresholdArg(args.Threshold)
	if err != nil {
		return nil, RunTaylorSweepOutput{}, err
	}
	minOrder, maxOrder := 2, 35
	if args.MinOrder != nil {
		minOrder = *args.MinOrder
	}
	if args.MaxOrder != nil {
		maxOrder = *args.MaxOrder
	}
	if minOrder < 2 || maxOrder < minOrder || maxOrder > 200 {
		return nil, RunTaylorSweepOutput{}, fmt.Errorf("order range [%d, %d] must satisfy 2 <= min <= max <= 200", minOrder, maxOrder)
	}
	orders := make([]int, 0, maxOrder-minOrder+1)
	for n := minOrder; n <= maxOrder; n++ {
		orders = append(orders, n)
	}

	sweep, err := simulation.TaylorSweep(res, threshold, orders)
	if err != nil {
		return nil, RunTaylorSweepOutput{}, err
	}
	out := RunTaylorSweepOutput{
		Threshold:     sweep.Threshold,
		CrossingOrder: sweep.CrossingOrder,
		Points:        sweep.Points,
	}
	if args.IncludeMatrix {
		m, err := simulation.BurdenRatioMatrix(res, nil, nil)
		if err != nil {
			return nil, RunTaylorSweepOutput{}, err
		}
		out.Matrix = &m
	}
	if sweep.CrossingOrder == 0 {
		out.Guidance = append(out.Guidance, "The simulated burden never exceeds the comparator in this order range.")
	}
	if s.enableMermaidCharts {
		out.Visuals = map[string]string{"sweep": visuals.SweepChart(sweep)}
	}
	return nil, out, nil
}

func (s *Server) summarize(res *simulation.Results, withPatients bool) (SummaryOutput, error) {
	out := SummaryOutput{
		RunID:   res.RunID,
		Seed:    res.Seed,
		Method:  res.Adjusted.Params.Method,
		Summary: report.Summarize(res),
		Totals:  report.ComputeTotals(res),
	}
	if withPatients {
		patients, err := report.PatientStats(res)
		if err != nil {
			return SummaryOutput{}, err
		}
		out.Patients = patients
	}
	if s.enableMermaidCharts {
		out.Visuals = map[string]string{"totals": visuals.TotalsChart(out.Totals)}
	}
	return out, nil
}

func burdenProfile(name string, raw, adjusted stats.Profile, idx int) BurdenProfile {
	return BurdenProfile{
		Name:          name,
		Raw:           raw.Slice(),
		Adjusted:      adjusted.Slice(),
		RawAbove:      raw.SumFrom(idx),
		AdjustedAbove: adjusted.SumFrom(idx),
	}
}

func noRunError(err error) error {
	if errors.Is(err, simulation.ErrNoRun) {
		return fmt.Errorf("%w: call run_simulation first", err)
	}
	return err
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// thresholdArg defaults a missing threshold to 0 and rejects NaN and infinities.
func thresholdArg(v *float64) (float64, error) {
	if v == nil {
		return 0, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, fmt.Errorf("threshold must be a finite number, got %v", *v)
	}
	return *v, nil
}
