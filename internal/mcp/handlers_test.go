package mcp

import (
	"context"
	"errors"
	"math"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painburden/internal/config"
	"painburden/internal/simulation"
	"painburden/internal/transform"
)

func setupTestServer(t *testing.T, mermaid bool) *Server {
	t.Helper()
	sim := simulation.DefaultConfig()
	sim.PercentToSimulate = 0.005

	engine, err := simulation.NewEngine(sim, 2)
	require.NoError(t, err)

	cfg := &config.AppConfig{Simulation: sim, Seed: 5, EnableMermaidCharts: mermaid}
	return NewServer(cfg, engine, "test")
}

func ptr[T any](v T) *T { return &v }

func TestHandlePreviewSubgroups(t *testing.T) {
	s := setupTestServer(t, false)
	ctx := context.Background()

	result, out, err := s.handlePreviewSubgroups(ctx, &sdk.CallToolRequest{}, PreviewSubgroupsInput{})
	require.NoError(t, err)
	assert.Nil(t, result, "SDK populates the result from the output")
	assert.Equal(t, int64(3_036_242), out.TotalSufferers)
	require.Len(t, out.Groups, 4)
	assert.Equal(t, "Episodic Treated", out.Groups[0].Name)

	_, out, err = s.handlePreviewSubgroups(ctx, &sdk.CallToolRequest{}, PreviewSubgroupsInput{PercentToSimulate: ptr(0.02)})
	require.NoError(t, err)
	assert.Equal(t, 607, out.TotalSimulated)
	assert.Equal(t, 0.02, s.engine.Config().PercentToSimulate)

	_, _, err = s.handlePreviewSubgroups(ctx, &sdk.CallToolRequest{}, PreviewSubgroupsInput{PropChronic: ptr(1.5)})
	assert.ErrorIs(t, err, simulation.ErrInvalidConfig)

	_, out, err = s.handlePreviewSubgroups(ctx, &sdk.CallToolRequest{}, PreviewSubgroupsInput{PercentToSimulate: ptr(0.0)})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Guidance)
}

func TestHandlers_RequireRun(t *testing.T) {
	s := setupTestServer(t, false)
	ctx := context.Background()
	req := &sdk.CallToolRequest{}

	_, _, err := s.handleGetSummary(ctx, req, GetSummaryInput{})
	assert.True(t, errors.Is(err, simulation.ErrNoRun))

	_, _, err = s.handleSetTransformation(ctx, req, SetTransformationInput{Method: "power"})
	assert.True(t, errors.Is(err, simulation.ErrNoRun))

	_, _, err = s.handleGetAdjustedBurden(ctx, req, GetAdjustedBurdenInput{})
	assert.True(t, errors.Is(err, simulation.ErrNoRun))

	_, _, err = s.handleRunTaylorSweep(ctx, req, RunTaylorSweepInput{})
	assert.True(t, errors.Is(err, simulation.ErrNoRun))
}

func TestHandlers_RunThenRetransform(t *testing.T) {
	s := setupTestServer(t, true)
	ctx := context.Background()
	req := &sdk.CallToolRequest{}

	_, run, err := s.handleRunSimulation(ctx, req, RunSimulationInput{})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), run.Seed)
	assert.Equal(t, "linear", run.Method)
	require.Len(t, run.Summary, 5)
	assert.Equal(t, run.Summary[4].PersonYears, run.Summary[4].AdjustedUnits)
	assert.Contains(t, run.Visuals["totals"], "xychart-beta")

	_, tr, err := s.handleSetTransformation(ctx, req, SetTransformationInput{Method: "power", Power: ptr(2.0)})
	require.NoError(t, err)
	assert.Equal(t, run.RunID, tr.RunID)
	assert.Equal(t, "power", tr.Method)
	require.Len(t, tr.TransformedGrid, 101)
	assert.InDelta(t, 10.0, tr.TransformedGrid[100], 1e-9)
	assert.Less(t, tr.Summary[4].AdjustedUnits, tr.Summary[4].PersonYears)

	_, _, err = s.handleSetTransformation(ctx, req, SetTransformationInput{Method: "taylor", TaylorOrder: ptr(1)})
	assert.ErrorIs(t, err, transform.ErrInvalidParams)

	_, sum, err := s.handleGetSummary(ctx, req, GetSummaryInput{})
	require.NoError(t, err)
	assert.Equal(t, "power", sum.Method)
	assert.Len(t, sum.Patients, 4)

	_, burden, err := s.handleGetAdjustedBurden(ctx, req, GetAdjustedBurdenInput{Subgroup: "Chronic Untreated", Threshold: ptr(9.0)})
	require.NoError(t, err)
	require.Len(t, burden.Groups, 1)
	assert.Equal(t, "Chronic Untreated", burden.Groups[0].Name)
	assert.LessOrEqual(t, burden.Groups[0].AdjustedAbove, burden.Groups[0].RawAbove)
	assert.Len(t, burden.Comparator.Raw, 101)

	_, _, err = s.handleGetAdjustedBurden(ctx, req, GetAdjustedBurdenInput{Subgroup: "Acute"})
	assert.Error(t, err)
}

func TestHandleRunTaylorSweep(t *testing.T) {
	s := setupTestServer(t, false)
	ctx := context.Background()
	req := &sdk.CallToolRequest{}

	_, _, err := s.handleRunSimulation(ctx, req, RunSimulationInput{Seed: ptr(uint64(9))})
	require.NoError(t, err)

	_, out, err := s.handleRunTaylorSweep(ctx, req, RunTaylorSweepInput{MinOrder: ptr(2), MaxOrder: ptr(6), IncludeMatrix: true})
	require.NoError(t, err)
	require.Len(t, out.Points, 5)
	assert.Equal(t, 2, out.Points[0].Order)
	require.NotNil(t, out.Matrix)
	assert.Len(t, out.Matrix.Thresholds, 21)
	assert.Len(t, out.Matrix.Orders, 23)

	_, _, err = s.handleRunTaylorSweep(ctx, req, RunTaylorSweepInput{MinOrder: ptr(1)})
	assert.Error(t, err)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, _, err = s.handleRunTaylorSweep(ctx, req, RunTaylorSweepInput{Threshold: ptr(v)})
		assert.Error(t, err, "threshold %v", v)
		_, _, err = s.handleGetAdjustedBurden(ctx, req, GetAdjustedBurdenInput{Threshold: ptr(v)})
		assert.Error(t, err, "threshold %v", v)
	}
}
