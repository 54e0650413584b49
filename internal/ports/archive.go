package ports

import (
	"time"

	"github.com/studiopipe/studiopipe/internal/domain"
)

type ArchivedResult struct {
	WorkflowID string                `json:"workflow_id"`
	Result     domain.PipelineResult `json:"result"`
	ArchivedAt time.Time             `json:"archived_at"`
}

type ArchivedComparison struct {
	TestID     string            `json:"test_id"`
	Comparison domain.Comparison `json:"comparison"`
	ArchivedAt time.Time         `json:"archived_at"`
}

// ResultArchive stores terminal workflow values locally for later inspection.
// The engine keeps the durable copy; this is a convenience index.
type ResultArchive interface {
	PutResult(workflowID string, res domain.PipelineResult) error
	GetResult(workflowID string) (*ArchivedResult, bool, error)
	ListResults() ([]ArchivedResult, error)

	PutComparison(testID string, cmp domain.Comparison) error
	GetComparison(testID string) (*ArchivedComparison, bool, error)

	Close() error
}
