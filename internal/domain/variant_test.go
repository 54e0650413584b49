package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSpec() PipelineSpec {
	return PipelineSpec{
		Input: PipelineInput{
			CharacterPrompt: "a wandering cartographer",
			VideoPrompt:     "sketching a coastline from a cliff",
		},
		Nodes: []NodeSpec{
			{Kind: NodeCharacterGen, Model: "flux-pro", Params: map[string]any{"steps": 30}},
			{Kind: NodeVideoGen, Model: "kling-2.1", Params: map[string]any{"fps": 24, "motion": "low"}},
		},
	}
}

func TestApplyVariant_SwapsModelOnTarget(t *testing.T) {
	v := ModelVariant{ID: "veo", Target: NodeVideoGen, Model: "veo-3"}

	spec, matched, err := ApplyVariant(baseSpec(), v)
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, "veo-3", spec.Nodes[1].Model)
	assert.Equal(t, "flux-pro", spec.Nodes[0].Model, "untargeted node untouched")
}

func TestApplyVariant_MergesParamsWithOverride(t *testing.T) {
	v := ModelVariant{
		ID:     "veo-tuned",
		Target: NodeVideoGen,
		Model:  "veo-3",
		Params: map[string]any{"fps": 30, "quality": "high"},
	}

	spec, matched, err := ApplyVariant(baseSpec(), v)
	require.NoError(t, err)
	assert.True(t, matched)

	params := spec.Nodes[1].Params
	assert.Equal(t, 30, params["fps"], "variant value wins")
	assert.Equal(t, "high", params["quality"], "variant-only key added")
	assert.Equal(t, "low", params["motion"], "base-only key kept")
}

func TestApplyVariant_ParamsOnNodeWithoutAny(t *testing.T) {
	base := baseSpec()
	base.Nodes[1].Params = nil

	v := ModelVariant{ID: "v", Target: NodeVideoGen, Model: "veo-3", Params: map[string]any{"fps": 30}}
	spec, matched, err := ApplyVariant(base, v)
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, 30, spec.Nodes[1].Params["fps"])
}

func TestApplyVariant_NoMatchingNode(t *testing.T) {
	v := ModelVariant{ID: "enh", Target: NodeEnhance, Model: "topaz"}

	spec, matched, err := ApplyVariant(baseSpec(), v)
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, "flux-pro", spec.Nodes[0].Model)
	assert.Equal(t, "kling-2.1", spec.Nodes[1].Model)
}

func TestApplyVariant_UnknownTargetKind(t *testing.T) {
	v := ModelVariant{ID: "bad", Target: NodeKind("audio_generation"), Model: "x"}

	_, _, err := ApplyVariant(baseSpec(), v)
	var kindErr *UnknownNodeKindError
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, NodeKind("audio_generation"), kindErr.Kind)
}

func TestApplyVariant_DoesNotMutateBase(t *testing.T) {
	base := baseSpec()
	v := ModelVariant{ID: "v", Target: NodeVideoGen, Model: "veo-3", Params: map[string]any{"fps": 60}}

	_, _, err := ApplyVariant(base, v)
	require.NoError(t, err)

	assert.Equal(t, "kling-2.1", base.Nodes[1].Model)
	assert.Equal(t, 24, base.Nodes[1].Params["fps"])
}

func TestPipelineSpec_Pipeline(t *testing.T) {
	spec := baseSpec()
	spec.Nodes = append(spec.Nodes, NodeSpec{Kind: NodeEnhance, Model: "topaz"})

	in := spec.Pipeline()
	assert.Equal(t, "flux-pro", in.ImageModel)
	assert.Equal(t, "kling-2.1", in.VideoModel)
	assert.True(t, in.Enhance)
	assert.Equal(t, "topaz", in.EnhanceModel)
	assert.Equal(t, "a wandering cartographer", in.CharacterPrompt)
}

func TestABTestInput_Validate(t *testing.T) {
	in := ABTestInput{TestID: "t", Variants: []ModelVariant{{ID: "a"}}}
	assert.NoError(t, in.Validate())

	in.Variants = nil
	assert.ErrorIs(t, in.Validate(), ErrNoVariants)

	in = ABTestInput{Variants: []ModelVariant{{ID: "a"}}}
	var vErr *ValidationError
	assert.ErrorAs(t, in.Validate(), &vErr)
}
