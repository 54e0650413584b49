package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func successResult(id string, cost, seconds float64) VariantResult {
	return NewVariantResult(
		ModelVariant{ID: id, Target: NodeVideoGen, Model: "m-" + id},
		PipelineResult{Success: true, TotalCost: cost, TotalSeconds: seconds},
	)
}

func TestCompare_RanksAcrossAxes(t *testing.T) {
	results := []VariantResult{
		successResult("pricey-fast", 3.0, 10),
		successResult("cheap-slow", 1.0, 60),
		successResult("balanced", 1.5, 24),
	}

	cmp, err := Compare("test-1", results, DefaultScoreWeights(), PlaceholderQuality)
	require.NoError(t, err)

	assert.Equal(t, "test-1", cmp.TestID)
	assert.Equal(t, 3, cmp.Succeeded)
	assert.Equal(t, "pricey-fast", cmp.Fastest)
	assert.Equal(t, "cheap-slow", cmp.Cheapest)
	assert.Equal(t, "pricey-fast", cmp.BestValue, "lowest cost*seconds product")
}

func TestCompare_WinnerFollowsWeights(t *testing.T) {
	cheap := successResult("cheap", 1.0, 60)
	fast := successResult("fast", 3.0, 10)
	results := []VariantResult{cheap, fast}

	tests := []struct {
		name    string
		weights ScoreWeights
		winner  string
	}{
		{"cost dominated", ScoreWeights{Cost: 1}, "cheap"},
		{"time dominated", ScoreWeights{Time: 1}, "fast"},
		{"zero weights fall back to defaults", ScoreWeights{}, "cheap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp, err := Compare("t", results, tt.weights, PlaceholderQuality)
			require.NoError(t, err)
			assert.Equal(t, tt.winner, cmp.Winner)
		})
	}
}

func TestCompare_QualityBreaksSymmetry(t *testing.T) {
	// Identical cost and time, so only the quality axis differentiates.
	a := successResult("a", 1.0, 10)
	b := successResult("b", 1.0, 10)

	quality := func(r VariantResult) float64 {
		if r.Variant.ID == "b" {
			return 0.9
		}
		return 0.1
	}

	cmp, err := Compare("t", []VariantResult{a, b}, ScoreWeights{Cost: 0.4, Time: 0.3, Quality: 0.3}, quality)
	require.NoError(t, err)
	assert.Equal(t, "b", cmp.Winner)
}

func TestCompare_TiesBreakTowardFirstEncountered(t *testing.T) {
	// modelA: cost 1.0, 2s. modelB: cost 2.0, 1s. With equal cost and time
	// weights the normalized scores tie exactly, so the first listed wins.
	a := successResult("modelA", 1.0, 2)
	b := successResult("modelB", 2.0, 1)

	cmp, err := Compare("t", []VariantResult{a, b}, ScoreWeights{Cost: 0.5, Time: 0.5}, PlaceholderQuality)
	require.NoError(t, err)
	assert.Equal(t, "modelA", cmp.Winner)

	cmp, err = Compare("t", []VariantResult{b, a}, ScoreWeights{Cost: 0.5, Time: 0.5}, PlaceholderQuality)
	require.NoError(t, err)
	assert.Equal(t, "modelB", cmp.Winner)
}

func TestCompare_FailedVariantsStayInResults(t *testing.T) {
	ok := successResult("ok", 1.0, 10)
	failed := FailedVariantResult(ModelVariant{ID: "broken", Target: NodeVideoGen}, "render exploded")

	cmp, err := Compare("t", []VariantResult{failed, ok}, DefaultScoreWeights(), PlaceholderQuality)
	require.NoError(t, err)

	assert.Len(t, cmp.Results, 2)
	assert.Equal(t, 1, cmp.Succeeded)
	assert.Equal(t, "ok", cmp.Winner)
	assert.Equal(t, "ok", cmp.Fastest)
	assert.Equal(t, "render exploded", cmp.Results[0].Result.Error)
}

func TestCompare_AllFailed(t *testing.T) {
	results := []VariantResult{
		FailedVariantResult(ModelVariant{ID: "a"}, "boom"),
		FailedVariantResult(ModelVariant{ID: "b"}, "also boom"),
	}
	_, err := Compare("t", results, DefaultScoreWeights(), PlaceholderQuality)
	assert.ErrorIs(t, err, ErrAllVariantsFailed)
}

func TestCompare_NoResults(t *testing.T) {
	_, err := Compare("t", nil, DefaultScoreWeights(), PlaceholderQuality)
	assert.ErrorIs(t, err, ErrNoVariants)
}

func TestCompare_SingleVariant(t *testing.T) {
	only := successResult("only", 2.0, 30)
	cmp, err := Compare("t", []VariantResult{only}, DefaultScoreWeights(), nil)
	require.NoError(t, err)

	// Degenerate normalization: one data point must not divide by zero.
	assert.Equal(t, "only", cmp.Winner)
	assert.Equal(t, "only", cmp.Fastest)
	assert.Equal(t, "only", cmp.Cheapest)
	assert.Equal(t, "only", cmp.BestValue)
}

func TestCompare_IsPure(t *testing.T) {
	results := []VariantResult{
		successResult("a", 1.0, 20),
		successResult("b", 2.0, 10),
	}

	first, err := Compare("t", results, DefaultScoreWeights(), PlaceholderQuality)
	require.NoError(t, err)
	second, err := Compare("t", results, DefaultScoreWeights(), PlaceholderQuality)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNewVariantResult_DerivedMetrics(t *testing.T) {
	r := successResult("a", 2.0, 8)
	assert.True(t, r.Succeeded)
	assert.InDelta(t, 0.25, r.CostPerSecond, 1e-9)
	assert.InDelta(t, 16.0, r.ValueScore, 1e-9)

	failed := NewVariantResult(ModelVariant{ID: "f"}, PipelineResult{Success: false, Error: "nope"})
	assert.False(t, failed.Succeeded)
	assert.Zero(t, failed.CostPerSecond)
	assert.Zero(t, failed.ValueScore)
}
