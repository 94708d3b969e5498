// internal/matching/advanced.go
package matching

import (
	"fmt"
	"math"

	"supplier-matching/internal/models"
)

const (
	FactorSemanticSimilarity = "algorithm_aiSemantic_similarity"
	FactorSimilarRFQHistory  = "similar_rfq_history"
	FactorFeedbackTrend      = "feedback_trend_momentum"
	FactorFeatureCoverage    = "algorithm_featureBased_coverage"
)

// advancedFactors only emits a factor when its inputs exist. An absent signal
// is left out rather than scored 0, so it does not pull the aggregate down.
func (s *Scorer) advancedFactors(rfq *models.RFQ, supplier *models.SupplierProfile) []models.MatchFactor {
	var out []models.MatchFactor

	if f, ok := s.semanticSimilarity(rfq, supplier); ok {
		out = append(out, f)
	}
	if f, ok := s.similarRFQHistory(supplier); ok {
		out = append(out, f)
	}
	if f, ok := s.feedbackTrend(supplier); ok {
		out = append(out, f)
	}
	if f, ok := s.featureCoverage(rfq, supplier); ok {
		out = append(out, f)
	}

	return out
}

func (s *Scorer) semanticSimilarity(rfq *models.RFQ, supplier *models.SupplierProfile) (models.MatchFactor, bool) {
	rfqTerms := termFrequencies(append([]string{rfq.Title, rfq.Description}, rfq.Specifications...)...)
	supplierText := append([]string{supplier.Description}, supplier.Keywords...)
	supplierTerms := termFrequencies(append(supplierText, supplier.Categories...)...)

	if len(rfqTerms) == 0 || len(supplierTerms) == 0 {
		return models.MatchFactor{}, false
	}

	similarity := cosine(rfqTerms, supplierTerms)
	return s.factor(FactorSemanticSimilarity, models.OriginAISemantic, similarity*100,
		fmt.Sprintf("Supplier profile is %d%% semantically similar to the RFQ", int(math.Round(similarity*100)))), true
}

func (s *Scorer) similarRFQHistory(supplier *models.SupplierProfile) (models.MatchFactor, bool) {
	stats := supplier.Stats
	if stats == nil || stats.SimilarRFQCount <= 0 {
		return models.MatchFactor{}, false
	}

	wins := stats.SimilarRFQWins
	if wins > stats.SimilarRFQCount {
		wins = stats.SimilarRFQCount
	}
	return s.factor(FactorSimilarRFQHistory, models.OriginCollaborative, float64(wins)/float64(stats.SimilarRFQCount)*100,
		fmt.Sprintf("Supplier succeeded on %d of %d similar RFQs", wins, stats.SimilarRFQCount)), true
}

func (s *Scorer) feedbackTrend(supplier *models.SupplierProfile) (models.MatchFactor, bool) {
	stats := supplier.Stats
	if stats == nil || stats.RecentSuccessRate == nil || stats.PriorSuccessRate == nil {
		return models.MatchFactor{}, false
	}

	recent := math.Max(0, math.Min(1, *stats.RecentSuccessRate))
	prior := math.Max(0, math.Min(1, *stats.PriorSuccessRate))
	delta := recent - prior

	var explanation string
	switch {
	case delta > 0.005:
		explanation = fmt.Sprintf("Success rate improved from %d%% to %d%% recently", pct(prior), pct(recent))
	case delta < -0.005:
		explanation = fmt.Sprintf("Success rate declined from %d%% to %d%% recently", pct(prior), pct(recent))
	default:
		explanation = fmt.Sprintf("Success rate held steady at %d%%", pct(recent))
	}

	return s.factor(FactorFeedbackTrend, models.OriginTimeSeries, 50+delta*100, explanation), true
}

func (s *Scorer) featureCoverage(rfq *models.RFQ, supplier *models.SupplierProfile) (models.MatchFactor, bool) {
	wanted := normalizedSet(rfq.Specifications)
	offered := normalizedSet(append(append([]string{}, supplier.Keywords...), supplier.Categories...))
	if len(wanted) == 0 || len(offered) == 0 {
		return models.MatchFactor{}, false
	}

	matched := 0
	for spec := range wanted {
		if _, ok := offered[spec]; ok {
			matched++
		}
	}

	return s.factor(FactorFeatureCoverage, models.OriginFeatureBased, float64(matched)/float64(len(wanted))*100,
		fmt.Sprintf("Supplier covers %d of %d RFQ specifications", matched, len(wanted))), true
}

func pct(rate float64) int {
	return int(math.Round(rate * 100))
}
