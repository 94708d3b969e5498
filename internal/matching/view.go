// internal/matching/view.go
package matching

import "supplier-matching/internal/models"

// RecommendationView carries the display fields derived from a
// recommendation. They are computed once here, not by each consumer.
type RecommendationView struct {
	models.SupplierRecommendation
	Explanation     string          `json:"explanation"`
	FormattedScore  string          `json:"formattedScore"`
	AlgorithmSource AlgorithmSource `json:"algorithmSource"`
	TopFactors      []RankedFactor  `json:"topFactors"`
}

// GroupView is one classifier bucket of views.
type GroupView struct {
	Source          AlgorithmSource      `json:"source"`
	Recommendations []RecommendationView `json:"recommendations"`
}

func (e *Engine) View(rec models.SupplierRecommendation) RecommendationView {
	return RecommendationView{
		SupplierRecommendation: rec,
		Explanation:            e.explainer.Explain(&rec),
		FormattedScore:         FormatMatchScore(float64(rec.MatchScore)),
		AlgorithmSource:        SourceOf(&rec),
		TopFactors:             e.explainer.VisualRanking(rec.MatchFactors),
	}
}

// Views maps recs to views in order. The result is never nil.
func (e *Engine) Views(recs []models.SupplierRecommendation) []RecommendationView {
	views := make([]RecommendationView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, e.View(rec))
	}
	return views
}

// GroupViews classifies recs and renders every bucket, keeping all five.
func (e *Engine) GroupViews(recs []models.SupplierRecommendation) []GroupView {
	groups := Classify(recs)
	out := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupView{Source: g.Source, Recommendations: e.Views(g.Recommendations)})
	}
	return out
}
