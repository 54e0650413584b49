package domain

import "dario.cat/mergo"

// ModelVariant describes one substitution applied to a base pipeline spec:
// every node of the target kind gets the variant's model and any explicit
// parameter overrides.
type ModelVariant struct {
	ID     string         `json:"id"`
	Target NodeKind       `json:"target"`
	Model  string         `json:"model"`
	Params map[string]any `json:"params,omitempty"`
}

// ABTestInput configures one comparison run: a shared base spec and the
// variants to substitute into it.
type ABTestInput struct {
	TestID   string         `json:"test_id"`
	Base     PipelineSpec   `json:"base"`
	Variants []ModelVariant `json:"variants"`
	Weights  ScoreWeights   `json:"weights"`
}

func (in *ABTestInput) Validate() error {
	if len(in.Variants) == 0 {
		return ErrNoVariants
	}
	if in.TestID == "" {
		return NewValidationError("test_id", "must not be empty")
	}
	return nil
}

// ApplyVariant returns a deep copy of base with the variant applied. The
// second return reports whether any node matched the variant's target kind;
// a non-matching variant is not an error so the same variant list can be
// reused across differently-shaped base specs.
func ApplyVariant(base PipelineSpec, v ModelVariant) (PipelineSpec, bool, error) {
	switch v.Target {
	case NodeCharacterGen, NodeVideoGen, NodeEnhance:
	default:
		return PipelineSpec{}, false, &UnknownNodeKindError{Kind: v.Target}
	}

	spec, err := base.Clone()
	if err != nil {
		return PipelineSpec{}, false, err
	}

	matched := false
	for i := range spec.Nodes {
		if spec.Nodes[i].Kind != v.Target {
			continue
		}
		matched = true
		spec.Nodes[i].Model = v.Model
		if len(v.Params) == 0 {
			continue
		}
		if spec.Nodes[i].Params == nil {
			spec.Nodes[i].Params = make(map[string]any, len(v.Params))
		}
		if err := mergo.Merge(&spec.Nodes[i].Params, v.Params, mergo.WithOverride); err != nil {
			return PipelineSpec{}, false, err
		}
	}
	return spec, matched, nil
}
