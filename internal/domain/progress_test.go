package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineProgress_AdvancesMonotonically(t *testing.T) {
	p := NewPipelineProgress(2)
	assert.Equal(t, StageInitializing, p.Stage)
	assert.Zero(t, p.OverallPercent)

	p.Advance(StageGeneratingCharacter)
	p.FinishStage(StageGeneratingCharacter, 0.5)
	assert.InDelta(t, 50, p.OverallPercent, 1e-9)

	p.Advance(StageGeneratingVideo)
	assert.InDelta(t, 50, p.OverallPercent, 1e-9, "overall holds across stage entry")
	assert.Zero(t, p.StagePercent)

	p.FinishStage(StageGeneratingVideo, 1.5)
	assert.InDelta(t, 100, p.OverallPercent, 1e-9)
	assert.InDelta(t, 2.0, p.TotalCost, 1e-9)

	p.Complete()
	assert.Equal(t, StageComplete, p.Stage)
	assert.InDelta(t, 100, p.OverallPercent, 1e-9)
}

func TestPipelineProgress_ReplayedFinishDoesNotDoubleCount(t *testing.T) {
	p := NewPipelineProgress(3)
	p.Advance(StageGeneratingCharacter)
	p.FinishStage(StageGeneratingCharacter, 0.5)
	p.FinishStage(StageGeneratingCharacter, 0.5)

	assert.InDelta(t, 0.5, p.TotalCost, 1e-9)
	assert.InDelta(t, 100.0/3, p.OverallPercent, 1e-9)
}

func TestPipelineProgress_FailFreezesState(t *testing.T) {
	p := NewPipelineProgress(2)
	p.Advance(StageGeneratingCharacter)
	p.FinishStage(StageGeneratingCharacter, 0.5)
	p.CharacterImage = "char.png"

	p.Fail("render exploded")
	assert.Equal(t, StageFailed, p.Stage)
	assert.Equal(t, "render exploded", p.Error)
	assert.Equal(t, "char.png", p.CharacterImage)
	assert.InDelta(t, 0.5, p.TotalCost, 1e-9)

	// Terminal stages absorb further transitions.
	p.Advance(StageGeneratingVideo)
	assert.Equal(t, StageFailed, p.Stage)
}
