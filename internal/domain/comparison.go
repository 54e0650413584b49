package domain

// ScoreWeights weight the normalized cost/time/quality axes when picking the
// overall winner of a comparison.
type ScoreWeights struct {
	Cost    float64 `json:"cost"`
	Time    float64 `json:"time"`
	Quality float64 `json:"quality"`
}

func (w ScoreWeights) zero() bool {
	return w.Cost == 0 && w.Time == 0 && w.Quality == 0
}

func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Cost: 0.4, Time: 0.3, Quality: 0.3}
}

// QualityFn scores the output quality of a variant in [0, 1]. Quality scoring
// is pluggable; PlaceholderQuality stands in until a real visual-quality
// metric exists.
type QualityFn func(VariantResult) float64

func PlaceholderQuality(VariantResult) float64 { return 0.5 }

// VariantResult pairs a variant with its pipeline result and derived metrics.
// A failed variant keeps zero metrics so the comparison table stays complete.
type VariantResult struct {
	Variant       ModelVariant   `json:"variant"`
	Result        PipelineResult `json:"result"`
	Succeeded     bool           `json:"succeeded"`
	CostPerSecond float64        `json:"cost_per_second"`
	ValueScore    float64        `json:"value_score"`
}

func NewVariantResult(v ModelVariant, r PipelineResult) VariantResult {
	out := VariantResult{Variant: v, Result: r, Succeeded: r.Success}
	if !r.Success {
		return out
	}
	if r.TotalSeconds > 0 {
		out.CostPerSecond = r.TotalCost / r.TotalSeconds
	}
	out.ValueScore = r.TotalCost * r.TotalSeconds
	return out
}

func FailedVariantResult(v ModelVariant, errMsg string) VariantResult {
	return VariantResult{
		Variant: v,
		Result:  PipelineResult{Success: false, Error: errMsg},
	}
}

// Comparison is a pure function of a set of variant results. The ranked
// fields name variant IDs and are derived only from the successful rows.
type Comparison struct {
	TestID    string          `json:"test_id"`
	Results   []VariantResult `json:"results"`
	Succeeded int             `json:"succeeded"`
	Fastest   string          `json:"fastest"`
	Cheapest  string          `json:"cheapest"`
	BestValue string          `json:"best_value"`
	Winner    string          `json:"winner"`
}

// Compare ranks the variant results. Ties break toward the first-encountered
// result. It fails only when every variant failed, since no meaningful
// comparison is possible then.
func Compare(testID string, results []VariantResult, weights ScoreWeights, quality QualityFn) (*Comparison, error) {
	if len(results) == 0 {
		return nil, ErrNoVariants
	}
	if weights.zero() {
		weights = DefaultScoreWeights()
	}
	if quality == nil {
		quality = PlaceholderQuality
	}

	var ok []VariantResult
	for _, r := range results {
		if r.Succeeded {
			ok = append(ok, r)
		}
	}
	if len(ok) == 0 {
		return nil, ErrAllVariantsFailed
	}

	cmp := &Comparison{TestID: testID, Results: results, Succeeded: len(ok)}

	fastest, cheapest, bestValue := ok[0], ok[0], ok[0]
	for _, r := range ok[1:] {
		if r.Result.TotalSeconds < fastest.Result.TotalSeconds {
			fastest = r
		}
		if r.Result.TotalCost < cheapest.Result.TotalCost {
			cheapest = r
		}
		if r.ValueScore < bestValue.ValueScore {
			bestValue = r
		}
	}
	cmp.Fastest = fastest.Variant.ID
	cmp.Cheapest = cheapest.Variant.ID
	cmp.BestValue = bestValue.Variant.ID

	minCost, maxCost := ok[0].Result.TotalCost, ok[0].Result.TotalCost
	minTime, maxTime := ok[0].Result.TotalSeconds, ok[0].Result.TotalSeconds
	for _, r := range ok[1:] {
		minCost = min(minCost, r.Result.TotalCost)
		maxCost = max(maxCost, r.Result.TotalCost)
		minTime = min(minTime, r.Result.TotalSeconds)
		maxTime = max(maxTime, r.Result.TotalSeconds)
	}

	best := ok[0]
	bestScore := weightedScore(ok[0], weights, quality, minCost, maxCost, minTime, maxTime)
	for _, r := range ok[1:] {
		if s := weightedScore(r, weights, quality, minCost, maxCost, minTime, maxTime); s > bestScore {
			best, bestScore = r, s
		}
	}
	cmp.Winner = best.Variant.ID

	return cmp, nil
}

// weightedScore rewards low cost, low time, and high quality. Normalization
// maps each axis onto [0, 1] across the successful results; a degenerate axis
// (all values equal) contributes its full weight to every variant.
func weightedScore(r VariantResult, w ScoreWeights, quality QualityFn, minCost, maxCost, minTime, maxTime float64) float64 {
	return w.Cost*(1-normalize(r.Result.TotalCost, minCost, maxCost)) +
		w.Time*(1-normalize(r.Result.TotalSeconds, minTime, maxTime)) +
		w.Quality*quality(r)
}

func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}
