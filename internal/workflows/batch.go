package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/studiopipe/studiopipe/internal/activities"
	"github.com/studiopipe/studiopipe/internal/domain"
)

const (
	distributeActivityTimeout = 5 * time.Minute
	analyzeActivityTimeout    = 2 * time.Minute
	accountActivityTimeout    = time.Minute
)

// batchState is the supervisor's mutable, instance-scoped state. Multiple
// supervisors may run concurrently; nothing here is process-wide.
type batchState struct {
	metrics       domain.BatchMetrics
	batchesRun    int
	outputs       []string
	errors        []string
	paused        bool
	scale         float64
	stopping      bool
	phase         string
	lastBatchSize int
}

type batchItemOutcome struct {
	item   domain.BatchItem
	result domain.PipelineResult
	err    string
}

// BatchWorkflow is the operations control loop: it fans out pipeline runs
// across personas × series × platforms in bounded chunks, distributes and
// measures every produced item, replicates high performers, rotates unhealthy
// accounts, and sleeps between batches. It runs until stopped or cancelled,
// then returns an aggregate summary.
//
// Signals: pause, resume, scale (clamped multiplier applied to the next
// batch), stop. Queries: getMetrics, getStatus. One item failing never aborts
// its siblings or the loop.
func BatchWorkflow(ctx workflow.Context, input domain.BatchInput) (*domain.BatchSummary, error) {
	logger := workflow.GetLogger(ctx)
	input.ApplyDefaults()

	state := &batchState{scale: 1.0, phase: "running"}
	if r := input.Resume; r != nil {
		state.metrics = r.Metrics
		state.batchesRun = r.BatchesRun
		state.outputs = r.Outputs
		state.errors = r.Errors
		state.paused = r.Paused
		if r.ScaleFactor > 0 {
			state.scale = r.ScaleFactor
		}
	}

	summary := func() *domain.BatchSummary {
		return &domain.BatchSummary{
			Metrics:    state.metrics,
			BatchesRun: state.batchesRun,
			Outputs:    state.outputs,
			Errors:     state.errors,
		}
	}

	if err := registerBatchQueries(ctx, state); err != nil {
		return nil, err
	}
	runBatchSignalLoop(ctx, state)

	if err := input.Validate(); err != nil {
		logger.Error("invalid batch input", "error", err)
		state.errors = append(state.errors, err.Error())
		return summary(), nil
	}

	accountCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: accountActivityTimeout,
		RetryPolicy:         retryPolicy(nil),
	})
	distCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: distributeActivityTimeout,
		RetryPolicy:         retryPolicy(nil),
	})
	analyzeCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: analyzeActivityTimeout,
		RetryPolicy:         retryPolicy(nil),
	})
	renderCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: videoActivityTimeout,
		HeartbeatTimeout:    renderHeartbeatTimeout,
		RetryPolicy:         retryPolicy(nil),
	})

	var gen *activities.GenerationActivities
	var dist *activities.DistributionActivities
	var acct *activities.AccountActivities

	batchesThisRun := 0
	for !state.stopping {
		if input.MaxBatchesPerRun > 0 && batchesThisRun >= input.MaxBatchesPerRun {
			logger.Info("continuing as new", "batches_run", state.batchesRun)
			next := input
			next.Resume = &domain.BatchResumeState{
				Metrics:     state.metrics,
				BatchesRun:  state.batchesRun,
				Outputs:     state.outputs,
				Errors:      state.errors,
				Paused:      state.paused,
				ScaleFactor: state.scale,
			}
			return nil, workflow.NewContinueAsNewError(ctx, BatchWorkflow, next)
		}

		state.phase = "waiting"
		if err := workflow.Await(ctx, func() bool { return !state.paused || state.stopping }); err != nil {
			logger.Info("batch supervisor cancelled, returning summary")
			return summary(), nil
		}
		if state.stopping {
			break
		}
		state.phase = "running"

		if input.WarmUp {
			for _, ref := range input.Accounts {
				if err := workflow.ExecuteActivity(accountCtx, acct.WarmUpAccount, ref).Get(ctx, nil); err != nil {
					logger.Warn("account warm-up failed", "account", ref.AccountID, "error", err)
				}
			}
		}

		// Scale is sampled once here, so a mid-batch scale signal only
		// affects the next batch - never an in-flight one.
		items := input.Items(state.scale)
		state.lastBatchSize = len(items)
		batchNum := state.batchesRun
		logger.Info("starting batch", "batch", batchNum, "items", len(items), "scale", state.scale)

		for start := 0; start < len(items) && !state.stopping; start += input.ChunkSize {
			end := min(start+input.ChunkSize, len(items))
			chunk := items[start:end]

			outcomes := make([]*batchItemOutcome, len(chunk))
			pending := len(chunk)
			for i := range chunk {
				idx := start + i
				slot := i
				item := chunk[i]
				workflow.Go(ctx, func(ctx workflow.Context) {
					defer func() { pending-- }()
					outcomes[slot] = runBatchItem(ctx, input, item, batchNum, idx)
				})
			}
			if err := workflow.Await(ctx, func() bool { return pending == 0 }); err != nil {
				return summary(), nil
			}

			for _, out := range outcomes {
				if out.err != "" {
					state.errors = append(state.errors, out.err)
					continue
				}
				state.outputs = append(state.outputs, out.result.VideoPath)
				processBatchOutcome(ctx, distCtx, analyzeCtx, renderCtx, input, state, out, gen, dist)
			}
		}

		state.phase = "rotating"
		for _, ref := range input.Accounts {
			var health activities.CheckAccountHealthOutput
			if err := workflow.ExecuteActivity(accountCtx, acct.CheckAccountHealth, ref).Get(ctx, &health); err != nil {
				logger.Warn("account health check failed", "account", ref.AccountID, "error", err)
				continue
			}
			if health.NeedsRotation {
				if err := workflow.ExecuteActivity(accountCtx, acct.RotateProxy, ref).Get(ctx, nil); err != nil {
					logger.Warn("proxy rotation failed", "account", ref.AccountID, "error", err)
				}
			}
		}

		state.batchesRun++
		batchesThisRun++
		if state.stopping {
			break
		}

		state.phase = "sleeping"
		if _, err := workflow.AwaitWithTimeout(ctx, input.BatchInterval, func() bool { return state.stopping }); err != nil {
			return summary(), nil
		}
	}

	state.phase = "stopped"
	logger.Info("batch supervisor stopped",
		"batches_run", state.batchesRun,
		"generated", state.metrics.TotalGenerated,
		"errors", len(state.errors),
	)
	return summary(), nil
}

// runBatchItem runs one pipeline generation with a small bounded retry and
// linearly increasing sleep between attempts. Exhaustion is reported, never
// propagated.
func runBatchItem(ctx workflow.Context, input domain.BatchInput, item domain.BatchItem, batchNum, idx int) *batchItemOutcome {
	base := workflow.GetInfo(ctx).WorkflowExecution.ID
	pipelineIn := input.ItemInput(item)

	var lastErr string
	for attempt := 1; attempt <= input.ItemAttempts; attempt++ {
		childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
			WorkflowID: fmt.Sprintf("%s-b%d-i%d-t%d", base, batchNum, idx, attempt),
		})
		var res domain.PipelineResult
		err := workflow.ExecuteChildWorkflow(childCtx, PipelineWorkflow, pipelineIn).Get(ctx, &res)
		switch {
		case err != nil:
			lastErr = err.Error()
		case !res.Success:
			lastErr = res.Error
		default:
			return &batchItemOutcome{item: item, result: res}
		}

		if attempt < input.ItemAttempts {
			if err := workflow.Sleep(ctx, time.Duration(attempt)*input.ItemRetryDelay); err != nil {
				break
			}
		}
	}
	return &batchItemOutcome{
		item: item,
		err:  fmt.Sprintf("%s/%s/%s: %s", item.Persona, item.Series, item.Platform, lastErr),
	}
}

// processBatchOutcome distributes one produced item, measures it, folds the
// measurement into the metrics, and replicates it when it outperforms the
// viral threshold. Distribution or measurement failures are recorded and the
// loop moves on.
func processBatchOutcome(
	ctx workflow.Context,
	distCtx, analyzeCtx, renderCtx workflow.Context,
	input domain.BatchInput,
	state *batchState,
	out *batchItemOutcome,
	gen *activities.GenerationActivities,
	dist *activities.DistributionActivities,
) {
	logger := workflow.GetLogger(ctx)

	var distOut activities.DistributeContentOutput
	err := workflow.ExecuteActivity(distCtx, dist.DistributeContent, activities.DistributeContentInput{
		ContentPath: out.result.VideoPath,
		Caption:     fmt.Sprintf("%s | %s", out.item.Persona, out.item.Series),
		Platforms:   []domain.Platform{out.item.Platform},
	}).Get(ctx, &distOut)
	if err != nil {
		state.errors = append(state.errors, fmt.Sprintf("distribute %s: %s", out.result.VideoPath, err))
		return
	}
	if len(distOut.Distributions) == 0 {
		state.errors = append(state.errors, fmt.Sprintf("distribute %s: no distributions", out.result.VideoPath))
		return
	}

	receipt := distOut.Distributions[0]
	var report domain.PerformanceReport
	err = workflow.ExecuteActivity(analyzeCtx, dist.AnalyzePerformance, activities.AnalyzePerformanceInput{
		ContentID: receipt.ContentID,
		Platform:  receipt.Platform,
	}).Get(ctx, &report)
	if err != nil {
		state.errors = append(state.errors, fmt.Sprintf("analyze %s: %s", receipt.ContentID, err))
		return
	}

	state.metrics.Observe(report, out.result.TotalCost, input.ViralThreshold)

	// Positive-feedback replication: spawn variations proportional to how far
	// the score cleared the threshold.
	variations := domain.ReplicationCount(report.ViralScore, input.ViralThreshold, input.ReplicationDivisor)
	if variations == 0 {
		return
	}
	logger.Info("replicating high performer",
		"content_id", receipt.ContentID,
		"viral_score", report.ViralScore,
		"variations", variations,
	)

	futures := make([]workflow.Future, 0, variations)
	for i := 0; i < variations; i++ {
		futures = append(futures, workflow.ExecuteActivity(renderCtx, gen.GenerateVariation, activities.GenerateVariationInput{
			SourceVideo: out.result.VideoPath,
			Prompt:      input.ItemInput(out.item).VideoPrompt,
			Model:       input.Pipeline.VideoModel,
			Index:       i + 1,
		}))
	}
	for i, f := range futures {
		var varOut activities.GenerateVariationOutput
		if err := f.Get(ctx, &varOut); err != nil {
			logger.Warn("variation generation failed", "index", i+1, "error", err)
			continue
		}
		state.outputs = append(state.outputs, varOut.VideoPath)
		state.metrics.EstimatedCost += varOut.Cost
	}
}

func registerBatchQueries(ctx workflow.Context, state *batchState) error {
	if err := workflow.SetQueryHandler(ctx, QueryMetrics, func() (domain.BatchMetrics, error) {
		return state.metrics, nil
	}); err != nil {
		return err
	}
	return workflow.SetQueryHandler(ctx, QueryBatchStatus, func() (domain.BatchStatus, error) {
		return domain.BatchStatus{
			State:         state.phase,
			Paused:        state.paused,
			ScaleFactor:   state.scale,
			BatchesRun:    state.batchesRun,
			LastBatchSize: state.lastBatchSize,
		}, nil
	})
}

func runBatchSignalLoop(ctx workflow.Context, state *batchState) {
	workflow.Go(ctx, func(ctx workflow.Context) {
		pauseCh := workflow.GetSignalChannel(ctx, SignalPause)
		resumeCh := workflow.GetSignalChannel(ctx, SignalResume)
		scaleCh := workflow.GetSignalChannel(ctx, SignalScale)
		stopCh := workflow.GetSignalChannel(ctx, SignalStop)
		logger := workflow.GetLogger(ctx)
		for {
			sel := workflow.NewSelector(ctx)
			sel.AddReceive(pauseCh, func(c workflow.ReceiveChannel, _ bool) {
				c.Receive(ctx, nil)
				state.paused = true
			})
			sel.AddReceive(resumeCh, func(c workflow.ReceiveChannel, _ bool) {
				c.Receive(ctx, nil)
				state.paused = false
			})
			sel.AddReceive(scaleCh, func(c workflow.ReceiveChannel, _ bool) {
				var factor float64
				c.Receive(ctx, &factor)
				state.scale = domain.ClampScale(factor)
				logger.Info("scale adjusted", "factor", state.scale)
			})
			sel.AddReceive(stopCh, func(c workflow.ReceiveChannel, _ bool) {
				c.Receive(ctx, nil)
				state.stopping = true
			})
			sel.Select(ctx)
		}
	})
}
