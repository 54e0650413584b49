package domain

import "time"

type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

type Stage string

const (
	StageInitializing        Stage = "initializing"
	StageGeneratingCharacter Stage = "generating_character"
	StageGeneratingVideo     Stage = "generating_video"
	StageEnhancing           Stage = "enhancing"
	StageComplete            Stage = "complete"
	StageFailed              Stage = "failed"
)

// PipelineInput is the immutable configuration for one pipeline run. It is
// created once by the caller and never mutated by the workflow.
type PipelineInput struct {
	CharacterPrompt string   `json:"character_prompt"`
	VideoPrompt     string   `json:"video_prompt"`
	DurationSeconds int      `json:"duration_seconds"`
	AspectRatio     string   `json:"aspect_ratio"`
	ImageModel      string   `json:"image_model"`
	VideoModel      string   `json:"video_model"`
	EnhanceModel    string   `json:"enhance_model,omitempty"`
	Platform        Platform `json:"platform"`
	Temperature     float64  `json:"temperature"`
	ImageCount      int      `json:"image_count"`
	Enhance         bool     `json:"enhance"`

	// Retry overrides the default per-activity retry policy when set.
	Retry *RetrySpec `json:"retry,omitempty"`
}

// RetrySpec bounds the engine-driven retry of a single activity: exponential
// backoff starting at InitialInterval, capped at MaximumInterval, for at most
// MaximumAttempts total invocations.
type RetrySpec struct {
	InitialInterval    time.Duration `json:"initial_interval"`
	BackoffCoefficient float64       `json:"backoff_coefficient"`
	MaximumInterval    time.Duration `json:"maximum_interval"`
	MaximumAttempts    int           `json:"maximum_attempts"`
}

func DefaultRetrySpec() RetrySpec {
	return RetrySpec{
		InitialInterval:    2 * time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    3,
	}
}

func (in *PipelineInput) ApplyDefaults() {
	if in.DurationSeconds == 0 {
		in.DurationSeconds = 8
	}
	if in.AspectRatio == "" {
		in.AspectRatio = "9:16"
	}
	if in.ImageModel == "" {
		in.ImageModel = "flux-pro"
	}
	if in.VideoModel == "" {
		in.VideoModel = "kling-2.1"
	}
	if in.Temperature == 0 {
		in.Temperature = 0.7
	}
	if in.ImageCount == 0 {
		in.ImageCount = 1
	}
}

func (in *PipelineInput) Validate() error {
	if in.CharacterPrompt == "" {
		return NewValidationError("character_prompt", "must not be empty")
	}
	if in.VideoPrompt == "" {
		return NewValidationError("video_prompt", "must not be empty")
	}
	if in.DurationSeconds < 0 {
		return NewValidationError("duration_seconds", "must not be negative")
	}
	return nil
}

// Stages returns the activity-backed stages this input will run through, in
// order. Enhancement is included only when requested.
func (in PipelineInput) Stages() []Stage {
	stages := []Stage{StageGeneratingCharacter, StageGeneratingVideo}
	if in.Enhance {
		stages = append(stages, StageEnhancing)
	}
	return stages
}

// StageStats is the per-stage slice of the result breakdown.
type StageStats struct {
	Cost    float64 `json:"cost"`
	Seconds float64 `json:"seconds"`
}

// PipelineResult is the terminal, immutable value of a pipeline execution.
// Failed executions produce the same shape with Success=false.
type PipelineResult struct {
	Success        bool                 `json:"success"`
	CharacterImage string               `json:"character_image,omitempty"`
	VideoPath      string               `json:"video_path,omitempty"`
	TotalCost      float64              `json:"total_cost"`
	TotalSeconds   float64              `json:"total_seconds"`
	Stages         map[Stage]StageStats `json:"stages"`
	Error          string               `json:"error,omitempty"`
}

// StageCostSum recomputes total cost from the per-stage breakdown. It must
// always equal TotalCost.
func (r PipelineResult) StageCostSum() float64 {
	var sum float64
	for _, s := range r.Stages {
		sum += s.Cost
	}
	return sum
}
