package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineInput_ApplyDefaults(t *testing.T) {
	in := PipelineInput{CharacterPrompt: "c", VideoPrompt: "v"}
	in.ApplyDefaults()

	assert.Equal(t, 8, in.DurationSeconds)
	assert.Equal(t, "9:16", in.AspectRatio)
	assert.Equal(t, "flux-pro", in.ImageModel)
	assert.Equal(t, "kling-2.1", in.VideoModel)
	assert.Equal(t, 0.7, in.Temperature)
	assert.Equal(t, 1, in.ImageCount)
}

func TestPipelineInput_DefaultsKeepExplicitValues(t *testing.T) {
	in := PipelineInput{
		CharacterPrompt: "c",
		VideoPrompt:     "v",
		DurationSeconds: 15,
		VideoModel:      "veo-3",
	}
	in.ApplyDefaults()

	assert.Equal(t, 15, in.DurationSeconds)
	assert.Equal(t, "veo-3", in.VideoModel)
}

func TestPipelineInput_Validate(t *testing.T) {
	tests := []struct {
		name  string
		in    PipelineInput
		field string
	}{
		{"missing character prompt", PipelineInput{VideoPrompt: "v"}, "character_prompt"},
		{"missing video prompt", PipelineInput{CharacterPrompt: "c"}, "video_prompt"},
		{"negative duration", PipelineInput{CharacterPrompt: "c", VideoPrompt: "v", DurationSeconds: -1}, "duration_seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vErr *ValidationError
			err := tt.in.Validate()
			if assert.ErrorAs(t, err, &vErr) {
				assert.Equal(t, tt.field, vErr.Field)
			}
		})
	}

	ok := PipelineInput{CharacterPrompt: "c", VideoPrompt: "v"}
	assert.NoError(t, ok.Validate())
}

func TestPipelineInput_Stages(t *testing.T) {
	plain := PipelineInput{}
	assert.Equal(t, []Stage{StageGeneratingCharacter, StageGeneratingVideo}, plain.Stages())

	enhanced := PipelineInput{Enhance: true}
	assert.Equal(t, []Stage{StageGeneratingCharacter, StageGeneratingVideo, StageEnhancing}, enhanced.Stages())
}

func TestPipelineResult_StageCostSum(t *testing.T) {
	r := PipelineResult{
		TotalCost: 2.0,
		Stages: map[Stage]StageStats{
			StageGeneratingCharacter: {Cost: 0.5},
			StageGeneratingVideo:     {Cost: 1.5},
		},
	}
	assert.InDelta(t, r.TotalCost, r.StageCostSum(), 1e-9)
}
