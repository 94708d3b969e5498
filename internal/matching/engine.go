// internal/matching/engine.go
package matching

import (
	"time"

	"supplier-matching/internal/models"
)

type Options struct {
	Threshold       int
	ExplanationTopN int
	RankingLimit    int
	Weights         map[string]float64
}

func DefaultOptions() Options {
	return Options{
		Threshold:       DefaultRecommendationThreshold,
		ExplanationTopN: DefaultExplanationTopN,
		RankingLimit:    DefaultRankingLimit,
	}
}

// Engine scores, aggregates, explains and ranks one RFQ against a pool of
// candidates. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	scorer     *Scorer
	aggregator *Aggregator
	explainer  *Explainer
	now        func() time.Time
}

func NewEngine(opts Options) *Engine {
	return &Engine{
		scorer:     NewScorer(opts.Weights),
		aggregator: NewAggregator(opts.Threshold),
		explainer:  NewExplainer(opts.ExplanationTopN, opts.RankingLimit),
		now:        time.Now,
	}
}

// WithClock pins the clock for both deadline scoring and timestamps.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	e.scorer.WithClock(now)
	return e
}

func (e *Engine) Explainer() *Explainer {
	return e.explainer
}

func (e *Engine) Aggregator() *Aggregator {
	return e.aggregator
}

// Match returns one recommendation per supplier, ranked. An empty pool gives
// an empty, non-nil result.
func (e *Engine) Match(rfq *models.RFQ, suppliers []models.SupplierProfile, useAdvanced bool) []models.SupplierRecommendation {
	recs := make([]models.SupplierRecommendation, 0, len(suppliers))
	if rfq == nil {
		return recs
	}

	now := e.now().UTC()
	for i := range suppliers {
		factors := e.scorer.Score(rfq, &suppliers[i], useAdvanced)
		rec := e.aggregator.Recommend(rfq.ID, &suppliers[i], factors, now)
		rec.MatchReason = e.explainer.Explain(&rec)
		recs = append(recs, rec)
	}

	return Rank(recs)
}
