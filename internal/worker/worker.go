package worker

import (
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/studiopipe/studiopipe/internal/activities"
	"github.com/studiopipe/studiopipe/internal/ports"
	"github.com/studiopipe/studiopipe/internal/workflows"
)

// Providers bundles the external service implementations the activities need.
// All fields are required unless the corresponding workflows are never run on
// this worker's task queue.
type Providers struct {
	Images    ports.ImageGenerator
	Videos    ports.VideoGenerator
	Enhancer  ports.VideoEnhancer
	Publisher ports.Publisher
	Analyzer  ports.Analyzer
	Accounts  ports.AccountPool
}

// Worker hosts the studiopipe workflows and activities on one task queue.
type Worker struct {
	inner  worker.Worker
	logger *slog.Logger
}

func New(c client.Client, taskQueue string, providers Providers, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}

	w := worker.New(c, taskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.PipelineWorkflow)
	w.RegisterWorkflow(workflows.BatchWorkflow)
	w.RegisterWorkflow(workflows.ABTestWorkflow)

	w.RegisterActivity(activities.NewGenerationActivities(
		providers.Images, providers.Videos, providers.Enhancer, logger))
	w.RegisterActivity(activities.NewDistributionActivities(
		providers.Publisher, providers.Analyzer, logger))
	w.RegisterActivity(activities.NewAccountActivities(providers.Accounts, logger))

	return &Worker{
		inner:  w,
		logger: logger.With("component", "worker"),
	}
}

// Run blocks until an interrupt arrives on interruptCh or the worker fails.
// Pass worker.InterruptCh() for signal-driven shutdown.
func (w *Worker) Run(interruptCh <-chan interface{}) error {
	w.logger.Info("worker starting")
	return w.inner.Run(interruptCh)
}

// Start runs the worker without blocking. Stop shuts it down.
func (w *Worker) Start() error {
	w.logger.Info("worker starting")
	return w.inner.Start()
}

func (w *Worker) Stop() {
	w.inner.Stop()
	w.logger.Info("worker stopped")
}

// InterruptCh closes on SIGINT or SIGTERM.
func InterruptCh() <-chan interface{} {
	return worker.InterruptCh()
}
