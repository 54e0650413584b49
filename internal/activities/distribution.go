package activities

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/studiopipe/studiopipe/internal/domain"
	"github.com/studiopipe/studiopipe/internal/ports"
)

type DistributionActivities struct {
	Publisher ports.Publisher
	Analyzer  ports.Analyzer
	Logger    *slog.Logger
}

func NewDistributionActivities(publisher ports.Publisher, analyzer ports.Analyzer, logger *slog.Logger) *DistributionActivities {
	return &DistributionActivities{
		Publisher: publisher,
		Analyzer:  analyzer,
		Logger:    logger.With("component", "distribution-activities"),
	}
}

type DistributeContentInput struct {
	ContentPath string            `json:"content_path"`
	Caption     string            `json:"caption"`
	Platforms   []domain.Platform `json:"platforms"`
	AccountID   string            `json:"account_id,omitempty"`
}

type DistributeContentOutput struct {
	Distributions []ports.PublishReceipt `json:"distributions"`
}

// DistributeContent uploads one piece of content to every requested platform
// concurrently. Any platform failing fails the activity as a whole and the
// engine retries it; publishers are expected to tolerate re-publication of
// the same content path.
func (a *DistributionActivities) DistributeContent(ctx context.Context, in DistributeContentInput) (*DistributeContentOutput, error) {
	var mu sync.Mutex
	receipts := make([]ports.PublishReceipt, 0, len(in.Platforms))

	g, gctx := errgroup.WithContext(ctx)
	for _, platform := range in.Platforms {
		g.Go(func() error {
			receipt, err := a.Publisher.Publish(gctx, ports.PublishRequest{
				ContentPath: in.ContentPath,
				Caption:     in.Caption,
				Platform:    platform,
				AccountID:   in.AccountID,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			receipts = append(receipts, *receipt)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	a.Logger.Info("content distributed", "path", in.ContentPath, "platforms", len(receipts))
	return &DistributeContentOutput{Distributions: receipts}, nil
}

type AnalyzePerformanceInput struct {
	ContentID string          `json:"content_id"`
	Platform  domain.Platform `json:"platform"`
}

func (a *DistributionActivities) AnalyzePerformance(ctx context.Context, in AnalyzePerformanceInput) (*domain.PerformanceReport, error) {
	report, err := a.Analyzer.Measure(ctx, in.ContentID, in.Platform)
	if err != nil {
		return nil, err
	}
	return report, nil
}
