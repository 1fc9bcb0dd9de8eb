package simulation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizes_ReferenceScenario(t *testing.T) {
	cfg := DefaultConfig()

	assert.InDelta(t, 3_036_242.27, cfg.TotalSufferers(), 1e-3)

	sizes := Sizes(cfg)
	require.Len(t, sizes, 4)

	want := []SubgroupSize{
		{EpisodicTreated, 1_044_467, 208},
		{EpisodicUntreated, 1_384_526, 276},
		{ChronicTreated, 261_116, 52},
		{ChronicUntreated, 346_131, 69},
	}
	assert.Equal(t, want, sizes)

	var sum int64
	for _, s := range sizes {
		sum += s.TrueCount
	}
	assert.LessOrEqual(t, sum, int64(cfg.TotalSufferers()))
	assert.GreaterOrEqual(t, sum, int64(cfg.TotalSufferers())-4)
}

func TestPreviewPopulation(t *testing.T) {
	p := PreviewPopulation(DefaultConfig())

	assert.Equal(t, int64(3_036_242), p.TotalSufferers)
	assert.Equal(t, 607, p.TotalSimulated)
	require.Len(t, p.Groups, 4)

	names := []string{"Episodic Treated", "Episodic Untreated", "Chronic Treated", "Chronic Untreated"}
	pcts := []int{34, 45, 9, 11}
	for i, g := range p.Groups {
		assert.Equal(t, names[i], g.Name)
		assert.Equal(t, pcts[i], g.Percentage, g.Name)
	}
}

func TestPreviewPopulation_ZeroSample(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PercentToSimulate = 0

	p := PreviewPopulation(cfg)
	assert.Equal(t, 0, p.TotalSimulated)
	for _, g := range p.Groups {
		assert.Equal(t, 0, g.Sampled)
		assert.Equal(t, 0, g.Percentage)
	}
}

func TestSizes_AllChronic(t *testing.T) {
	cfg := DefaultConfig().WithChronicShare(1)

	for _, s := range Sizes(cfg) {
		if !s.Subgroup.Chronic() {
			assert.Zero(t, s.TrueCount, s.Subgroup.String())
			assert.Zero(t, s.Sampled, s.Subgroup.String())
		}
	}
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.PercentToSimulate = 0.005
	return cfg
}

func TestGenerate_DeterministicAcrossWorkers(t *testing.T) {
	cfg := smallConfig()

	serial, err := Generate(context.Background(), cfg, 42, 1)
	require.NoError(t, err)
	parallel, err := Generate(context.Background(), cfg, 42, 8)
	require.NoError(t, err)

	require.Equal(t, len(serial.Patients), len(parallel.Patients))
	for i := range serial.Patients {
		assert.Equal(t, serial.Patients[i], parallel.Patients[i], "group %d", i)
	}

	other, err := Generate(context.Background(), cfg, 43, 8)
	require.NoError(t, err)
	assert.NotEqual(t, serial.Patients[0], other.Patients[0])
}

func TestGenerate_GroupSizesMatchPreview(t *testing.T) {
	cfg := smallConfig()
	pop, err := Generate(context.Background(), cfg, 7, 0)
	require.NoError(t, err)

	for i, size := range Sizes(cfg) {
		assert.Len(t, pop.Patients[i], size.Sampled)
		for _, p := range pop.Group(size.Subgroup) {
			assert.Equal(t, size.Subgroup.Chronic(), p.Chronic())
			assert.Equal(t, size.Subgroup.Treated(), p.Treated())
		}
	}
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, smallConfig(), 1, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGenerate_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PropTreated = 2

	_, err := Generate(context.Background(), cfg, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
