package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	MinScaleFactor = 0.1
	MaxScaleFactor = 10.0
)

// ClampScale bounds a scale signal's multiplier to the safe range.
func ClampScale(f float64) float64 {
	if f < MinScaleFactor {
		return MinScaleFactor
	}
	if f > MaxScaleFactor {
		return MaxScaleFactor
	}
	return f
}

// ReplicationCount returns how many variations to spawn for a measured viral
// score. Zero below the threshold; above it the count grows with the score.
// The divisor of 20 is a tuned heuristic, not a derived constant.
func ReplicationCount(viralScore, threshold, divisor float64) int {
	if viralScore <= threshold {
		return 0
	}
	if divisor <= 0 {
		divisor = 20
	}
	return int(math.Ceil(viralScore / divisor))
}

// AccountRef identifies one rate-limited external identity.
type AccountRef struct {
	Platform  Platform `json:"platform"`
	AccountID string   `json:"account_id"`
}

// BatchItem is one cell of the personas × series × platforms cross product.
type BatchItem struct {
	Persona  string   `json:"persona"`
	Series   string   `json:"series"`
	Platform Platform `json:"platform"`
}

// BatchInput configures the supervisor loop. The Resume fields carry
// accumulated state across continue-as-new boundaries and are zero on a fresh
// start.
type BatchInput struct {
	Personas  []string     `json:"personas"`
	Series    []string     `json:"series"`
	Platforms []Platform   `json:"platforms"`
	Accounts  []AccountRef `json:"accounts,omitempty"`

	// Pipeline is the template every batch item is derived from.
	Pipeline PipelineInput `json:"pipeline"`

	ChunkSize          int           `json:"chunk_size"`
	ItemAttempts       int           `json:"item_attempts"`
	ItemRetryDelay     time.Duration `json:"item_retry_delay"`
	BatchInterval      time.Duration `json:"batch_interval"`
	ViralThreshold     float64       `json:"viral_threshold"`
	ReplicationDivisor float64       `json:"replication_divisor"`
	WarmUp             bool          `json:"warm_up"`

	// MaxBatchesPerRun bounds history growth: after this many batches the
	// workflow continues as new. Zero disables.
	MaxBatchesPerRun int `json:"max_batches_per_run"`

	Resume *BatchResumeState `json:"resume,omitempty"`
}

// BatchResumeState is the accumulated supervisor state carried across
// continue-as-new.
type BatchResumeState struct {
	Metrics     BatchMetrics `json:"metrics"`
	BatchesRun  int          `json:"batches_run"`
	Outputs     []string     `json:"outputs"`
	Errors      []string     `json:"errors"`
	Paused      bool         `json:"paused"`
	ScaleFactor float64      `json:"scale_factor"`
}

func (in *BatchInput) ApplyDefaults() {
	if in.ChunkSize == 0 {
		in.ChunkSize = 10
	}
	if in.ItemAttempts == 0 {
		in.ItemAttempts = 3
	}
	if in.ItemRetryDelay == 0 {
		in.ItemRetryDelay = 10 * time.Second
	}
	if in.BatchInterval == 0 {
		in.BatchInterval = time.Hour
	}
	if in.ViralThreshold == 0 {
		in.ViralThreshold = 70
	}
	if in.ReplicationDivisor == 0 {
		in.ReplicationDivisor = 20
	}
}

func (in *BatchInput) Validate() error {
	if len(in.Personas) == 0 {
		return NewValidationError("personas", "must not be empty")
	}
	if len(in.Series) == 0 {
		return NewValidationError("series", "must not be empty")
	}
	if len(in.Platforms) == 0 {
		return NewValidationError("platforms", "must not be empty")
	}
	return nil
}

// Items expands the cross product and scales it to the batch size implied by
// the current multiplier. Scaling below the full cross product truncates;
// scaling above it cycles through the product again.
func (in BatchInput) Items(scale float64) []BatchItem {
	var product []BatchItem
	for _, persona := range in.Personas {
		for _, series := range in.Series {
			for _, platform := range in.Platforms {
				product = append(product, BatchItem{Persona: persona, Series: series, Platform: platform})
			}
		}
	}
	if len(product) == 0 {
		return nil
	}
	target := int(math.Round(float64(len(product)) * ClampScale(scale)))
	if target < 1 {
		target = 1
	}
	items := make([]BatchItem, target)
	for i := range items {
		items[i] = product[i%len(product)]
	}
	return items
}

// ItemInput derives the pipeline input for one batch item from the template.
func (in BatchInput) ItemInput(item BatchItem) PipelineInput {
	p := in.Pipeline
	p.CharacterPrompt = fmt.Sprintf("%s, persona: %s", p.CharacterPrompt, item.Persona)
	p.VideoPrompt = fmt.Sprintf("%s, series: %s", p.VideoPrompt, item.Series)
	p.Platform = item.Platform
	return p
}

// BatchMetrics is the supervisor's running aggregate. It is owned by one
// workflow instance, accumulated after every observed outcome, and never
// reset during a run.
type BatchMetrics struct {
	TotalGenerated   int     `json:"total_generated"`
	TotalViews       int64   `json:"total_views"`
	TotalEngagement  float64 `json:"total_engagement"`
	HighPerformers   int     `json:"high_performers"`
	AvgEngagement    float64 `json:"avg_engagement"`
	EstimatedCost    float64 `json:"estimated_cost"`
	EstimatedRevenue float64 `json:"estimated_revenue"`
}

// revenuePerThousandViews is a rough blended CPM estimate across platforms.
const revenuePerThousandViews = 0.9

// Observe folds one measured outcome into the aggregate.
func (m *BatchMetrics) Observe(report PerformanceReport, cost float64, viralThreshold float64) {
	m.TotalGenerated++
	m.TotalViews += report.Views
	m.TotalEngagement += report.Engagement
	m.AvgEngagement = m.TotalEngagement / float64(m.TotalGenerated)
	m.EstimatedCost += cost
	m.EstimatedRevenue = float64(m.TotalViews) / 1000 * revenuePerThousandViews
	if report.ViralScore > viralThreshold {
		m.HighPerformers++
	}
}

// PerformanceReport is the measured outcome of one distributed item.
type PerformanceReport struct {
	ContentID    string   `json:"content_id"`
	Views        int64    `json:"views"`
	Engagement   float64  `json:"engagement"`
	ViralScore   float64  `json:"viral_score"`
	BestPlatform Platform `json:"best_platform"`
	URL          string   `json:"url,omitempty"`
}

// BatchStatus is the narrow control-plane projection of the supervisor state.
type BatchStatus struct {
	State         string  `json:"state"`
	Paused        bool    `json:"paused"`
	ScaleFactor   float64 `json:"scale_factor"`
	BatchesRun    int     `json:"batches_run"`
	LastBatchSize int     `json:"last_batch_size"`
}

// BatchSummary is the terminal value of a stopped supervisor.
type BatchSummary struct {
	Metrics    BatchMetrics `json:"metrics"`
	BatchesRun int          `json:"batches_run"`
	Outputs    []string     `json:"outputs"`
	Errors     []string     `json:"errors"`
}
