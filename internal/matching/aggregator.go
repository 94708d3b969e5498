// internal/matching/aggregator.go
package matching

import (
	"math"
	"sort"
	"time"

	"supplier-matching/internal/models"
)

// DefaultRecommendationThreshold marks a "high quality" match.
const DefaultRecommendationThreshold = 80

type Aggregator struct {
	Threshold int
}

func NewAggregator(threshold int) *Aggregator {
	return &Aggregator{Threshold: int(clampScore(float64(threshold)))}
}

// Aggregate returns round(Σ score·weight / Σ weight) clamped to [0,100].
// A zero weight sum yields 0.
func Aggregate(factors []models.MatchFactor) int {
	var weighted, total float64
	for _, f := range factors {
		w := clampWeight(f.Weight)
		weighted += clampScore(f.Score) * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return int(clampScore(math.Round(weighted / total)))
}

func (a *Aggregator) IsRecommended(score int) bool {
	return score >= a.Threshold
}

// Recommend builds the recommendation for one supplier. MatchReason is left
// empty for the explainer.
func (a *Aggregator) Recommend(rfqID int64, supplier *models.SupplierProfile, factors []models.MatchFactor, now time.Time) models.SupplierRecommendation {
	score := Aggregate(factors)
	if factors == nil {
		factors = []models.MatchFactor{}
	}

	rec := models.SupplierRecommendation{
		RFQID:        rfqID,
		MatchScore:   score,
		MatchFactors: factors,
		Recommended:  a.IsRecommended(score),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if supplier != nil {
		rec.SupplierID = supplier.ID
		rec.SupplierName = supplier.CompanyName
	}
	return rec
}

// Rank orders recommendations by match score descending, then supplier id
// ascending. The slice is sorted in place and returned.
func Rank(recs []models.SupplierRecommendation) []models.SupplierRecommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].MatchScore != recs[j].MatchScore {
			return recs[i].MatchScore > recs[j].MatchScore
		}
		return recs[i].SupplierID < recs[j].SupplierID
	})
	return recs
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampWeight(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
