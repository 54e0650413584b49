// Package activities implements the retryable units of work the workflows
// invoke. Each activity crosses the boundary to an external collaborator
// declared in ports, and reports cost and elapsed time back to the workflow.
package activities

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/studiopipe/studiopipe/internal/ports"
)

// defaultPollInterval paces provider polling; each poll also heartbeats so
// the engine never mistakes a long render for a hung task.
const defaultPollInterval = 10 * time.Second

type GenerationActivities struct {
	Images   ports.ImageGenerator
	Videos   ports.VideoGenerator
	Enhancer ports.VideoEnhancer
	Logger   *slog.Logger

	// PollInterval overrides the render polling cadence when non-zero.
	PollInterval time.Duration
}

func NewGenerationActivities(images ports.ImageGenerator, videos ports.VideoGenerator, enhancer ports.VideoEnhancer, logger *slog.Logger) *GenerationActivities {
	return &GenerationActivities{
		Images:   images,
		Videos:   videos,
		Enhancer: enhancer,
		Logger:   logger.With("component", "generation-activities"),
	}
}

func (a *GenerationActivities) pollInterval() time.Duration {
	if a.PollInterval > 0 {
		return a.PollInterval
	}
	return defaultPollInterval
}

// attemptPrefix derives a fresh, attempt-unique output target so a retried
// invocation never writes over a previous attempt's artifacts.
func attemptPrefix(ctx context.Context) string {
	info := activity.GetInfo(ctx)
	return fmt.Sprintf("%s-%s-a%d", info.WorkflowExecution.ID, info.ActivityID, info.Attempt)
}

type GenerateCharacterImageInput struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Count       int     `json:"count"`
}

type GenerateCharacterImageOutput struct {
	Images  []string `json:"images"`
	Cost    float64  `json:"cost"`
	Seconds float64  `json:"seconds"`
}

func (a *GenerationActivities) GenerateCharacterImage(ctx context.Context, in GenerateCharacterImageInput) (*GenerateCharacterImageOutput, error) {
	started := time.Now()
	batch, err := a.Images.GenerateImages(ctx, ports.ImageRequest{
		Prompt:       in.Prompt,
		Model:        in.Model,
		Temperature:  in.Temperature,
		Count:        in.Count,
		OutputPrefix: attemptPrefix(ctx),
	})
	if err != nil {
		return nil, err
	}
	if len(batch.Paths) == 0 {
		return nil, temporal.NewNonRetryableApplicationError("image provider returned no images", "EmptyResult", nil)
	}
	return &GenerateCharacterImageOutput{
		Images:  batch.Paths,
		Cost:    batch.Cost,
		Seconds: time.Since(started).Seconds(),
	}, nil
}

type GenerateVideoInput struct {
	Prompt          string `json:"prompt"`
	Model           string `json:"model"`
	DurationSeconds int    `json:"duration_seconds"`
	AspectRatio     string `json:"aspect_ratio"`
	FirstFrame      string `json:"first_frame,omitempty"`
}

type GenerateVideoOutput struct {
	VideoPath string  `json:"video_path"`
	Cost      float64 `json:"cost"`
	Seconds   float64 `json:"seconds"`
}

// GenerateVideoFromImage starts a render job and polls it to completion,
// heartbeating the job id and percent on every poll.
func (a *GenerationActivities) GenerateVideoFromImage(ctx context.Context, in GenerateVideoInput) (*GenerateVideoOutput, error) {
	started := time.Now()
	jobID, err := a.Videos.StartRender(ctx, ports.VideoRequest{
		Prompt:          in.Prompt,
		Model:           in.Model,
		DurationSeconds: in.DurationSeconds,
		AspectRatio:     in.AspectRatio,
		FirstFrame:      in.FirstFrame,
		OutputPrefix:    attemptPrefix(ctx),
	})
	if err != nil {
		return nil, err
	}
	a.Logger.Info("render started", "job_id", jobID, "model", in.Model)

	for {
		status, err := a.Videos.RenderStatus(ctx, jobID)
		if err != nil {
			return nil, err
		}
		activity.RecordHeartbeat(ctx, fmt.Sprintf("%s: %.0f%%", jobID, status.Percent))
		if status.Done {
			if status.Error != "" {
				return nil, temporal.NewApplicationError(status.Error, "RenderFailed")
			}
			return &GenerateVideoOutput{
				VideoPath: status.OutputPath,
				Cost:      status.Cost,
				Seconds:   time.Since(started).Seconds(),
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.pollInterval()):
		}
	}
}

type EnhanceVideoInput struct {
	InputPath string `json:"input_path"`
	Model     string `json:"model"`
}

type EnhanceVideoOutput struct {
	OutputPath string  `json:"output_path"`
	Cost       float64 `json:"cost"`
	Seconds    float64 `json:"seconds"`
}

func (a *GenerationActivities) EnhanceVideo(ctx context.Context, in EnhanceVideoInput) (*EnhanceVideoOutput, error) {
	started := time.Now()
	res, err := a.Enhancer.Enhance(ctx, ports.EnhanceRequest{
		InputPath:    in.InputPath,
		Model:        in.Model,
		OutputPrefix: attemptPrefix(ctx),
	})
	if err != nil {
		return nil, err
	}
	return &EnhanceVideoOutput{
		OutputPath: res.OutputPath,
		Cost:       res.Cost,
		Seconds:    time.Since(started).Seconds(),
	}, nil
}

type GenerateVariationInput struct {
	SourceVideo string `json:"source_video"`
	Prompt      string `json:"prompt"`
	Model       string `json:"model"`
	Index       int    `json:"index"`
}

type GenerateVariationOutput struct {
	VideoPath string  `json:"video_path"`
	Cost      float64 `json:"cost"`
	Seconds   float64 `json:"seconds"`
}

// GenerateVariation re-renders a high-performing video with a perturbed
// prompt. The supervisor spawns these proportionally to the viral score.
func (a *GenerationActivities) GenerateVariation(ctx context.Context, in GenerateVariationInput) (*GenerateVariationOutput, error) {
	out, err := a.GenerateVideoFromImage(ctx, GenerateVideoInput{
		Prompt:     fmt.Sprintf("%s (variation %d)", in.Prompt, in.Index),
		Model:      in.Model,
		FirstFrame: in.SourceVideo,
	})
	if err != nil {
		return nil, err
	}
	return &GenerateVariationOutput{VideoPath: out.VideoPath, Cost: out.Cost, Seconds: out.Seconds}, nil
}
