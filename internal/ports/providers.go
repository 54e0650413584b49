// Package ports declares the boundaries to external collaborators: the
// generative model vendors, the distribution platforms, and local storage.
// The orchestration core depends only on these interfaces.
package ports

import (
	"context"

	"github.com/studiopipe/studiopipe/internal/domain"
)

type ImageRequest struct {
	Prompt       string  `json:"prompt"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	Count        int     `json:"count"`
	OutputPrefix string  `json:"output_prefix"`
}

type ImageBatch struct {
	Paths []string `json:"paths"`
	Cost  float64  `json:"cost"`
}

// ImageGenerator produces character images from a prompt. Implementations
// must write to fresh targets derived from OutputPrefix so a retried call
// never corrupts an earlier attempt's output.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, req ImageRequest) (*ImageBatch, error)
}

type VideoRequest struct {
	Prompt          string `json:"prompt"`
	Model           string `json:"model"`
	DurationSeconds int    `json:"duration_seconds"`
	AspectRatio     string `json:"aspect_ratio"`
	FirstFrame      string `json:"first_frame,omitempty"`
	OutputPrefix    string `json:"output_prefix"`
}

type RenderStatus struct {
	Done       bool    `json:"done"`
	Percent    float64 `json:"percent"`
	OutputPath string  `json:"output_path,omitempty"`
	Cost       float64 `json:"cost"`
	Error      string  `json:"error,omitempty"`
}

// VideoGenerator exposes renders as start-then-poll jobs since a render can
// run for minutes. Callers poll RenderStatus until Done.
type VideoGenerator interface {
	StartRender(ctx context.Context, req VideoRequest) (jobID string, err error)
	RenderStatus(ctx context.Context, jobID string) (*RenderStatus, error)
}

type EnhanceRequest struct {
	InputPath    string `json:"input_path"`
	Model        string `json:"model"`
	OutputPrefix string `json:"output_prefix"`
}

type EnhanceResult struct {
	OutputPath string  `json:"output_path"`
	Cost       float64 `json:"cost"`
}

type VideoEnhancer interface {
	Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResult, error)
}

type PublishRequest struct {
	ContentPath string          `json:"content_path"`
	Caption     string          `json:"caption"`
	Platform    domain.Platform `json:"platform"`
	AccountID   string          `json:"account_id,omitempty"`
}

type PublishReceipt struct {
	Platform  domain.Platform `json:"platform"`
	ContentID string          `json:"content_id"`
	URL       string          `json:"url"`
}

// Publisher uploads one piece of content to one platform.
type Publisher interface {
	Publish(ctx context.Context, req PublishRequest) (*PublishReceipt, error)
}

// Analyzer measures the externally-observed performance of published content.
type Analyzer interface {
	Measure(ctx context.Context, contentID string, platform domain.Platform) (*domain.PerformanceReport, error)
}

type AccountHealth struct {
	Healthy       bool   `json:"healthy"`
	NeedsRotation bool   `json:"needs_rotation"`
	Detail        string `json:"detail,omitempty"`
}

// AccountPool manages the shared pool of rate-limited platform identities.
// Workflows never mutate account state directly, only through these calls.
type AccountPool interface {
	WarmUp(ctx context.Context, ref domain.AccountRef) error
	Health(ctx context.Context, ref domain.AccountRef) (*AccountHealth, error)
	RotateProxy(ctx context.Context, ref domain.AccountRef) error
}
