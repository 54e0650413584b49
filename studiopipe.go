// Package studiopipe provides durable orchestration for generative video
// pipelines on top of a Temporal cluster.
//
// It covers three layers of the content operation:
//   - single pipelines: character image, video render, optional enhancement,
//     with pause/resume/cancel and live progress
//   - batch supervision: chunked fan-out across personas, series, and
//     platforms with scaling, replication of high performers, and account
//     rotation
//   - A/B testing: the same base pipeline run once per model variant, ranked
//     by cost, time, and quality
//
// Basic usage:
//
//	client, err := studiopipe.New(studiopipe.DefaultConfig())
//	workflowID, err := client.StartPipeline(ctx, studiopipe.PipelineInput{
//	    CharacterPrompt: "a stoic lighthouse keeper",
//	    VideoPrompt:     "walking along a stormy pier at dusk",
//	})
//	result, err := client.PipelineResult(ctx, workflowID)
package studiopipe

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"

	"github.com/studiopipe/studiopipe/internal/adapters/archive"
	"github.com/studiopipe/studiopipe/internal/domain"
	"github.com/studiopipe/studiopipe/internal/ports"
	"github.com/studiopipe/studiopipe/internal/workflows"
)

// PipelineInput configures one generation pipeline run.
type PipelineInput = domain.PipelineInput

// PipelineResult is the terminal value of a pipeline run. Failed runs still
// produce one, with Success false and the failure message in Error.
type PipelineResult = domain.PipelineResult

// PipelineProgress is the live progress projection queryable during a run.
type PipelineProgress = domain.PipelineProgress

// RetrySpec overrides the engine's retry policy for pipeline activities.
type RetrySpec = domain.RetrySpec

// PipelineSpec is the node-level description of a pipeline, used as the base
// of A/B tests.
type PipelineSpec = domain.PipelineSpec

// NodeSpec is one stage of a PipelineSpec.
type NodeSpec = domain.NodeSpec

// BatchInput configures a batch supervisor run.
type BatchInput = domain.BatchInput

// BatchItem is one cell of the personas × series × platforms cross product.
type BatchItem = domain.BatchItem

// AccountRef identifies one external platform account.
type AccountRef = domain.AccountRef

// BatchMetrics is the supervisor's running aggregate.
type BatchMetrics = domain.BatchMetrics

// BatchStatus is the supervisor's control-plane status projection.
type BatchStatus = domain.BatchStatus

// BatchSummary is the terminal value of a stopped supervisor.
type BatchSummary = domain.BatchSummary

// ABTestInput configures one variant comparison run.
type ABTestInput = domain.ABTestInput

// ModelVariant is one substitution applied to the base spec of an A/B test.
type ModelVariant = domain.ModelVariant

// ScoreWeights weight the axes of the A/B winner score.
type ScoreWeights = domain.ScoreWeights

// Comparison is the ranked outcome of an A/B test.
type Comparison = domain.Comparison

// Platform identifies a distribution target.
type Platform = domain.Platform

const (
	PlatformTikTok    = domain.PlatformTikTok
	PlatformYouTube   = domain.PlatformYouTube
	PlatformInstagram = domain.PlatformInstagram
	PlatformFacebook  = domain.PlatformFacebook
)

// Node kinds for PipelineSpec and ModelVariant targets.
const (
	NodeCharacterGen = domain.NodeCharacterGen
	NodeVideoGen     = domain.NodeVideoGen
	NodeEnhance      = domain.NodeEnhance
)

// Client starts and steers workflows against a Temporal cluster. It does not
// execute them; run a Worker against the same task queue for that.
type Client struct {
	temporal client.Client
	archive  ports.ResultArchive
	cfg      Config
}

// New dials the Temporal cluster named by the config and, when DataDir is
// set, opens the local result archive beside it.
func New(cfg Config) (*Client, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    tlog.NewStructuredLogger(cfg.Logger),
	})
	if err != nil {
		return nil, fmt.Errorf("dialing temporal at %s: %w", cfg.HostPort, err)
	}

	var arc ports.ResultArchive
	if cfg.DataDir != "" {
		arc, err = archive.Open(cfg.DataDir, cfg.Logger)
		if err != nil {
			c.Close()
			return nil, err
		}
	}

	return &Client{temporal: c, archive: arc, cfg: cfg}, nil
}

// Temporal exposes the underlying engine client for operations this wrapper
// does not cover.
func (c *Client) Temporal() client.Client { return c.temporal }

// Archive returns the local result archive, or nil when DataDir was empty.
func (c *Client) Archive() ports.ResultArchive { return c.archive }

func (c *Client) Close() error {
	c.temporal.Close()
	if c.archive != nil {
		return c.archive.Close()
	}
	return nil
}

// StartPipeline launches one pipeline run and returns its workflow ID.
func (c *Client) StartPipeline(ctx context.Context, input PipelineInput) (string, error) {
	id := "pipeline-" + uuid.NewString()
	_, err := c.temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        id,
		TaskQueue: c.cfg.TaskQueue,
	}, workflows.PipelineWorkflow, input)
	if err != nil {
		return "", fmt.Errorf("starting pipeline: %w", err)
	}
	return id, nil
}

// PipelineResult blocks until the run finishes and returns its terminal
// value, archiving it when an archive is configured.
func (c *Client) PipelineResult(ctx context.Context, workflowID string) (*PipelineResult, error) {
	var res PipelineResult
	if err := c.temporal.GetWorkflow(ctx, workflowID, "").Get(ctx, &res); err != nil {
		return nil, err
	}
	if c.archive != nil {
		if err := c.archive.PutResult(workflowID, res); err != nil {
			c.cfg.Logger.Warn("archiving pipeline result failed", "workflow_id", workflowID, "error", err)
		}
	}
	return &res, nil
}

// Pause suspends a running pipeline before its next stage boundary.
func (c *Client) Pause(ctx context.Context, workflowID string) error {
	return c.temporal.SignalWorkflow(ctx, workflowID, "", workflows.SignalPause, nil)
}

// Resume lifts a pause.
func (c *Client) Resume(ctx context.Context, workflowID string) error {
	return c.temporal.SignalWorkflow(ctx, workflowID, "", workflows.SignalResume, nil)
}

// Cancel requests cooperative cancellation; the pipeline stops at its next
// stage boundary and reports a cancelled result.
func (c *Client) Cancel(ctx context.Context, workflowID string) error {
	return c.temporal.SignalWorkflow(ctx, workflowID, "", workflows.SignalCancel, nil)
}

// Progress queries the live progress of a run.
func (c *Client) Progress(ctx context.Context, workflowID string) (*PipelineProgress, error) {
	val, err := c.temporal.QueryWorkflow(ctx, workflowID, "", workflows.QueryProgress)
	if err != nil {
		return nil, err
	}
	var p PipelineProgress
	if err := val.Get(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TotalCost queries the cost accumulated so far by a run.
func (c *Client) TotalCost(ctx context.Context, workflowID string) (float64, error) {
	val, err := c.temporal.QueryWorkflow(ctx, workflowID, "", workflows.QueryTotalCost)
	if err != nil {
		return 0, err
	}
	var cost float64
	if err := val.Get(&cost); err != nil {
		return 0, err
	}
	return cost, nil
}

// Status queries the coarse run state: running, paused, or cancelling.
func (c *Client) Status(ctx context.Context, workflowID string) (string, error) {
	val, err := c.temporal.QueryWorkflow(ctx, workflowID, "", workflows.QueryStatus)
	if err != nil {
		return "", err
	}
	var status string
	if err := val.Get(&status); err != nil {
		return "", err
	}
	return status, nil
}

// StartBatch launches a batch supervisor and returns its workflow ID.
func (c *Client) StartBatch(ctx context.Context, input BatchInput) (string, error) {
	id := "batch-" + uuid.NewString()
	_, err := c.temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        id,
		TaskQueue: c.cfg.TaskQueue,
	}, workflows.BatchWorkflow, input)
	if err != nil {
		return "", fmt.Errorf("starting batch: %w", err)
	}
	return id, nil
}

// PauseBatch suspends the supervisor loop before its next batch.
func (c *Client) PauseBatch(ctx context.Context, workflowID string) error {
	return c.temporal.SignalWorkflow(ctx, workflowID, "", workflows.SignalPause, nil)
}

// ResumeBatch lifts a batch pause.
func (c *Client) ResumeBatch(ctx context.Context, workflowID string) error {
	return c.temporal.SignalWorkflow(ctx, workflowID, "", workflows.SignalResume, nil)
}

// ScaleBatch adjusts the size multiplier for subsequent batches. The value is
// clamped to [0.1, 10] by the supervisor.
func (c *Client) ScaleBatch(ctx context.Context, workflowID string, factor float64) error {
	return c.temporal.SignalWorkflow(ctx, workflowID, "", workflows.SignalScale, factor)
}

// StopBatch asks the supervisor to finish its current batch and return its
// summary.
func (c *Client) StopBatch(ctx context.Context, workflowID string) error {
	return c.temporal.SignalWorkflow(ctx, workflowID, "", workflows.SignalStop, nil)
}

// BatchMetrics queries the supervisor's running aggregate.
func (c *Client) BatchMetrics(ctx context.Context, workflowID string) (*BatchMetrics, error) {
	val, err := c.temporal.QueryWorkflow(ctx, workflowID, "", workflows.QueryMetrics)
	if err != nil {
		return nil, err
	}
	var m BatchMetrics
	if err := val.Get(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// BatchStatus queries the supervisor's control-plane status.
func (c *Client) BatchStatus(ctx context.Context, workflowID string) (*BatchStatus, error) {
	val, err := c.temporal.QueryWorkflow(ctx, workflowID, "", workflows.QueryBatchStatus)
	if err != nil {
		return nil, err
	}
	var s BatchStatus
	if err := val.Get(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// BatchSummary blocks until the supervisor stops and returns its summary.
func (c *Client) BatchSummary(ctx context.Context, workflowID string) (*BatchSummary, error) {
	var s BatchSummary
	if err := c.temporal.GetWorkflow(ctx, workflowID, "").Get(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RunABTest runs every variant against the base spec and blocks until the
// ranked comparison is ready, archiving it when an archive is configured. A
// missing TestID is filled in.
func (c *Client) RunABTest(ctx context.Context, input ABTestInput) (*Comparison, error) {
	if input.TestID == "" {
		input.TestID = "abtest-" + uuid.NewString()
	}
	run, err := c.temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        input.TestID,
		TaskQueue: c.cfg.TaskQueue,
	}, workflows.ABTestWorkflow, input)
	if err != nil {
		return nil, fmt.Errorf("starting a/b test: %w", err)
	}

	var cmp Comparison
	if err := run.Get(ctx, &cmp); err != nil {
		return nil, err
	}
	if c.archive != nil {
		if err := c.archive.PutComparison(input.TestID, cmp); err != nil {
			c.cfg.Logger.Warn("archiving comparison failed", "test_id", input.TestID, "error", err)
		}
	}
	return &cmp, nil
}
