package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/studiopipe/studiopipe/internal/activities"
	"github.com/studiopipe/studiopipe/internal/domain"
)

// Single-attempt timeouts per stage. Renders heartbeat inside their window.
const (
	imageActivityTimeout   = 5 * time.Minute
	videoActivityTimeout   = 30 * time.Minute
	enhanceActivityTimeout = 30 * time.Minute
	renderHeartbeatTimeout = 2 * time.Minute
)

// pipelineControl holds the cooperative control flags toggled by signal
// handlers and observed at stage checkpoints.
type pipelineControl struct {
	paused    bool
	cancelled bool
}

// PipelineWorkflow orchestrates one linear generation run: character image,
// then video from that image, then optional enhancement. Stages are strictly
// sequential because each consumes the previous stage's artifact.
//
// The outside world interacts only through signals (pause, resume, cancel)
// and queries (progress, totalCost, status). Pause and cancel are cooperative:
// an in-flight activity is never interrupted, the flag is observed at the
// next stage checkpoint.
//
// Failures never escape as workflow errors; the terminal value is always a
// PipelineResult, with Success=false carrying the error message.
func PipelineWorkflow(ctx workflow.Context, input domain.PipelineInput) (*domain.PipelineResult, error) {
	logger := workflow.GetLogger(ctx)
	input.ApplyDefaults()
	started := workflow.Now(ctx)

	progress := domain.NewPipelineProgress(len(input.Stages()))
	stats := make(map[domain.Stage]domain.StageStats)
	ctrl := &pipelineControl{}

	fail := func(err error) (*domain.PipelineResult, error) {
		progress.Fail(err.Error())
		logger.Error("pipeline failed", "error", err, "stage", progress.Stage)
		return &domain.PipelineResult{
			Success:        false,
			CharacterImage: progress.CharacterImage,
			VideoPath:      progress.VideoPath,
			TotalCost:      progress.TotalCost,
			TotalSeconds:   workflow.Now(ctx).Sub(started).Seconds(),
			Stages:         stats,
			Error:          err.Error(),
		}, nil
	}

	if err := registerPipelineQueries(ctx, progress, ctrl); err != nil {
		return nil, err
	}
	runPipelineSignalLoop(ctx, ctrl)

	if err := input.Validate(); err != nil {
		return fail(err)
	}

	// checkpoint blocks while paused and surfaces a pending cancellation.
	// Both flags flip only in the signal loop, so Await wakes deterministically.
	checkpoint := func() error {
		if err := workflow.Await(ctx, func() bool { return !ctrl.paused || ctrl.cancelled }); err != nil {
			return err
		}
		if ctrl.cancelled {
			return temporal.NewNonRetryableApplicationError(domain.ErrCancelled.Error(), "Cancelled", nil)
		}
		return nil
	}

	retry := retryPolicy(input.Retry)
	imageCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: imageActivityTimeout,
		RetryPolicy:         retry,
	})
	videoCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: videoActivityTimeout,
		HeartbeatTimeout:    renderHeartbeatTimeout,
		RetryPolicy:         retry,
	})
	enhanceCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: enhanceActivityTimeout,
		HeartbeatTimeout:    renderHeartbeatTimeout,
		RetryPolicy:         retry,
	})

	var gen *activities.GenerationActivities

	if err := checkpoint(); err != nil {
		return fail(err)
	}
	progress.Advance(domain.StageGeneratingCharacter)
	stageStart := workflow.Now(ctx)
	var imgOut activities.GenerateCharacterImageOutput
	err := workflow.ExecuteActivity(imageCtx, gen.GenerateCharacterImage, activities.GenerateCharacterImageInput{
		Prompt:      input.CharacterPrompt,
		Model:       input.ImageModel,
		Temperature: input.Temperature,
		Count:       input.ImageCount,
	}).Get(ctx, &imgOut)
	if err != nil {
		return fail(err)
	}
	progress.CharacterImage = imgOut.Images[0]
	progress.FinishStage(domain.StageGeneratingCharacter, imgOut.Cost)
	stats[domain.StageGeneratingCharacter] = domain.StageStats{
		Cost:    imgOut.Cost,
		Seconds: workflow.Now(ctx).Sub(stageStart).Seconds(),
	}
	logger.Info("character image generated", "path", progress.CharacterImage, "cost", imgOut.Cost)

	if err := checkpoint(); err != nil {
		return fail(err)
	}
	progress.Advance(domain.StageGeneratingVideo)
	stageStart = workflow.Now(ctx)
	var vidOut activities.GenerateVideoOutput
	err = workflow.ExecuteActivity(videoCtx, gen.GenerateVideoFromImage, activities.GenerateVideoInput{
		Prompt:          input.VideoPrompt,
		Model:           input.VideoModel,
		DurationSeconds: input.DurationSeconds,
		AspectRatio:     input.AspectRatio,
		FirstFrame:      progress.CharacterImage,
	}).Get(ctx, &vidOut)
	if err != nil {
		return fail(err)
	}
	progress.VideoPath = vidOut.VideoPath
	progress.FinishStage(domain.StageGeneratingVideo, vidOut.Cost)
	stats[domain.StageGeneratingVideo] = domain.StageStats{
		Cost:    vidOut.Cost,
		Seconds: workflow.Now(ctx).Sub(stageStart).Seconds(),
	}
	logger.Info("video generated", "path", progress.VideoPath, "cost", vidOut.Cost)

	if input.Enhance {
		if err := checkpoint(); err != nil {
			return fail(err)
		}
		progress.Advance(domain.StageEnhancing)
		stageStart = workflow.Now(ctx)
		var enhOut activities.EnhanceVideoOutput
		err = workflow.ExecuteActivity(enhanceCtx, gen.EnhanceVideo, activities.EnhanceVideoInput{
			InputPath: progress.VideoPath,
			Model:     input.EnhanceModel,
		}).Get(ctx, &enhOut)
		if err != nil {
			return fail(err)
		}
		progress.EnhancedPath = enhOut.OutputPath
		progress.VideoPath = enhOut.OutputPath
		progress.FinishStage(domain.StageEnhancing, enhOut.Cost)
		stats[domain.StageEnhancing] = domain.StageStats{
			Cost:    enhOut.Cost,
			Seconds: workflow.Now(ctx).Sub(stageStart).Seconds(),
		}
		logger.Info("video enhanced", "path", enhOut.OutputPath, "cost", enhOut.Cost)
	}

	progress.Complete()

	result := &domain.PipelineResult{
		Success:        true,
		CharacterImage: progress.CharacterImage,
		VideoPath:      progress.VideoPath,
		TotalCost:      progress.TotalCost,
		TotalSeconds:   workflow.Now(ctx).Sub(started).Seconds(),
		Stages:         stats,
	}
	logger.Info("pipeline complete", "cost", result.TotalCost, "seconds", result.TotalSeconds)
	return result, nil
}

func registerPipelineQueries(ctx workflow.Context, progress *domain.PipelineProgress, ctrl *pipelineControl) error {
	if err := workflow.SetQueryHandler(ctx, QueryProgress, func() (domain.PipelineProgress, error) {
		return *progress, nil
	}); err != nil {
		return err
	}
	if err := workflow.SetQueryHandler(ctx, QueryTotalCost, func() (float64, error) {
		return progress.TotalCost, nil
	}); err != nil {
		return err
	}
	return workflow.SetQueryHandler(ctx, QueryStatus, func() (string, error) {
		switch {
		case progress.Stage == domain.StageComplete:
			return "complete", nil
		case progress.Stage == domain.StageFailed:
			return "failed", nil
		case ctrl.cancelled:
			return "cancelling", nil
		case ctrl.paused:
			return "paused", nil
		default:
			return "running", nil
		}
	})
}

// runPipelineSignalLoop drains control signals for the lifetime of the run.
// Repeated pauses and spurious resumes are no-ops by construction.
func runPipelineSignalLoop(ctx workflow.Context, ctrl *pipelineControl) {
	workflow.Go(ctx, func(ctx workflow.Context) {
		pauseCh := workflow.GetSignalChannel(ctx, SignalPause)
		resumeCh := workflow.GetSignalChannel(ctx, SignalResume)
		cancelCh := workflow.GetSignalChannel(ctx, SignalCancel)
		for {
			sel := workflow.NewSelector(ctx)
			sel.AddReceive(pauseCh, func(c workflow.ReceiveChannel, _ bool) {
				c.Receive(ctx, nil)
				ctrl.paused = true
			})
			sel.AddReceive(resumeCh, func(c workflow.ReceiveChannel, _ bool) {
				c.Receive(ctx, nil)
				ctrl.paused = false
			})
			sel.AddReceive(cancelCh, func(c workflow.ReceiveChannel, _ bool) {
				c.Receive(ctx, nil)
				ctrl.cancelled = true
			})
			sel.Select(ctx)
		}
	})
}

func retryPolicy(spec *domain.RetrySpec) *temporal.RetryPolicy {
	s := domain.DefaultRetrySpec()
	if spec != nil {
		s = *spec
	}
	return &temporal.RetryPolicy{
		InitialInterval:    s.InitialInterval,
		BackoffCoefficient: s.BackoffCoefficient,
		MaximumInterval:    s.MaximumInterval,
		MaximumAttempts:    int32(s.MaximumAttempts),
	}
}
