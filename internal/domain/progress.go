package domain

// PipelineProgress is the engine-visible state owned exclusively by a running
// pipeline instance. It moves forward through stages and is never rolled back:
// a failure freezes it at the last successful checkpoint plus an error.
type PipelineProgress struct {
	Stage          Stage             `json:"stage"`
	StagePercent   float64           `json:"stage_percent"`
	OverallPercent float64           `json:"overall_percent"`
	CharacterImage string            `json:"character_image,omitempty"`
	VideoPath      string            `json:"video_path,omitempty"`
	EnhancedPath   string            `json:"enhanced_path,omitempty"`
	StageCosts     map[Stage]float64 `json:"stage_costs"`
	TotalCost      float64           `json:"total_cost"`
	Error          string            `json:"error,omitempty"`

	totalStages     int
	completedStages int
}

func NewPipelineProgress(totalStages int) *PipelineProgress {
	return &PipelineProgress{
		Stage:       StageInitializing,
		StageCosts:  make(map[Stage]float64),
		totalStages: totalStages,
	}
}

// Advance moves the progress into the given stage with zero stage-local
// progress. Terminal stages never advance.
func (p *PipelineProgress) Advance(stage Stage) {
	if p.Stage == StageComplete || p.Stage == StageFailed {
		return
	}
	p.Stage = stage
	p.StagePercent = 0
}

// FinishStage records the stage's cost and bumps overall progress. Costs are
// recorded exactly once per stage; a replayed checkpoint overwrites rather
// than accumulates, so a crash-and-replay never double-counts.
func (p *PipelineProgress) FinishStage(stage Stage, cost float64) {
	if _, seen := p.StageCosts[stage]; !seen {
		p.completedStages++
	}
	p.StageCosts[stage] = cost
	p.TotalCost = 0
	for _, c := range p.StageCosts {
		p.TotalCost += c
	}
	p.StagePercent = 100
	if p.totalStages > 0 {
		p.OverallPercent = float64(p.completedStages) / float64(p.totalStages) * 100
	}
}

func (p *PipelineProgress) Complete() {
	p.Stage = StageComplete
	p.StagePercent = 100
	p.OverallPercent = 100
}

// Fail freezes the progress in the failed absorption state. Artifact paths and
// recorded costs are preserved as they stood at the last checkpoint.
func (p *PipelineProgress) Fail(msg string) {
	p.Stage = StageFailed
	p.Error = msg
}
