package studiopipe

import (
	"github.com/studiopipe/studiopipe/internal/domain"
	"github.com/studiopipe/studiopipe/internal/ports"
	"github.com/studiopipe/studiopipe/internal/worker"
)

// Provider interfaces. Implement these against real generation and
// distribution services and hand them to NewWorker.

// ImageGenerator produces character stills from a text prompt.
type ImageGenerator = ports.ImageGenerator

// VideoGenerator starts renders and reports their progress.
type VideoGenerator = ports.VideoGenerator

// VideoEnhancer post-processes a rendered video.
type VideoEnhancer = ports.VideoEnhancer

// Publisher uploads content to one platform.
type Publisher = ports.Publisher

// Analyzer measures the performance of distributed content.
type Analyzer = ports.Analyzer

// AccountPool manages platform account health and proxies.
type AccountPool = ports.AccountPool

// Request and response types the provider interfaces exchange.
type (
	ImageRequest   = ports.ImageRequest
	ImageBatch     = ports.ImageBatch
	VideoRequest   = ports.VideoRequest
	RenderStatus   = ports.RenderStatus
	EnhanceRequest = ports.EnhanceRequest
	EnhanceResult  = ports.EnhanceResult
	PublishRequest = ports.PublishRequest
	PublishReceipt = ports.PublishReceipt
	AccountHealth  = ports.AccountHealth
)

// PerformanceReport is the measured outcome of one distributed item.
type PerformanceReport = domain.PerformanceReport

// Providers bundles the provider implementations a worker hosts.
type Providers = worker.Providers

// Worker hosts the workflows and activities on the client's task queue.
type Worker = worker.Worker

// NewWorker builds a worker bound to the client's cluster and task queue.
// Call Run with InterruptCh() to serve until interrupted.
func NewWorker(c *Client, providers Providers) *Worker {
	return worker.New(c.temporal, c.cfg.TaskQueue, providers, c.cfg.Logger)
}

// InterruptCh closes on SIGINT or SIGTERM; pass it to Worker.Run.
func InterruptCh() <-chan interface{} {
	return worker.InterruptCh()
}
