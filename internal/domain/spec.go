package domain

import "github.com/studiopipe/studiopipe/internal/xjson"

// NodeKind enumerates the configurable node types of a pipeline spec. Variant
// substitution matches on this enum rather than free-form strings so that an
// unhandled kind is a compile-visible switch arm, not a silent typo.
type NodeKind string

const (
	NodeCharacterGen NodeKind = "character_generation"
	NodeVideoGen     NodeKind = "video_generation"
	NodeEnhance      NodeKind = "video_enhancement"
)

func (k NodeKind) Valid() bool {
	switch k {
	case NodeCharacterGen, NodeVideoGen, NodeEnhance:
		return true
	}
	return false
}

// NodeSpec configures one generative node of a pipeline.
type NodeSpec struct {
	Kind   NodeKind       `json:"kind"`
	Model  string         `json:"model"`
	Params map[string]any `json:"params,omitempty"`
}

// PipelineSpec is a pipeline configuration expressed as a set of typed nodes
// over a base input. It is the unit A/B variants are applied to.
type PipelineSpec struct {
	Input PipelineInput `json:"input"`
	Nodes []NodeSpec    `json:"nodes"`
}

// Clone deep-copies the spec through a serialization round trip so variant
// application never aliases the base configuration.
func (s PipelineSpec) Clone() (PipelineSpec, error) {
	raw, err := xjson.Marshal(s)
	if err != nil {
		return PipelineSpec{}, err
	}
	var out PipelineSpec
	if err := xjson.Unmarshal(raw, &out); err != nil {
		return PipelineSpec{}, err
	}
	return out, nil
}

// Pipeline projects the spec onto a runnable PipelineInput, applying each
// node's model to the stage it configures.
func (s PipelineSpec) Pipeline() PipelineInput {
	in := s.Input
	for _, n := range s.Nodes {
		switch n.Kind {
		case NodeCharacterGen:
			in.ImageModel = n.Model
		case NodeVideoGen:
			in.VideoModel = n.Model
		case NodeEnhance:
			in.Enhance = true
			in.EnhanceModel = n.Model
		}
	}
	return in
}
