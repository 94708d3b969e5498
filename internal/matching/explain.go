// internal/matching/explain.go
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"supplier-matching/internal/models"
)

const (
	DefaultExplanationTopN = 2
	DefaultRankingLimit    = 5

	FallbackExplanation = "This supplier is a match based on multiple factors."
)

type Explainer struct {
	TopN         int
	RankingLimit int
}

func NewExplainer(topN, rankingLimit int) *Explainer {
	if topN <= 0 {
		topN = DefaultExplanationTopN
	}
	if rankingLimit <= 0 {
		rankingLimit = DefaultRankingLimit
	}
	return &Explainer{TopN: topN, RankingLimit: rankingLimit}
}

// Explain returns a short reason for the recommendation. An existing
// MatchReason always wins. The input is never modified.
func (e *Explainer) Explain(rec *models.SupplierRecommendation) string {
	if rec.MatchReason != "" {
		return rec.MatchReason
	}
	if len(rec.MatchFactors) == 0 {
		return fmt.Sprintf("This supplier has a match score of %d%%.", rec.MatchScore)
	}

	top := byContribution(rec.MatchFactors)
	if len(top) > e.TopN {
		top = top[:e.TopN]
	}

	parts := make([]string, 0, len(top))
	for _, f := range top {
		if text := strings.TrimSpace(f.Explanation); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return FallbackExplanation
	}
	return strings.Join(parts, ". ")
}

type RankedFactor struct {
	Name         string              `json:"name"`
	Score        float64             `json:"score"`
	Weight       float64             `json:"weight"`
	Contribution float64             `json:"contribution"`
	Explanation  string              `json:"explanation"`
	Origin       models.FactorOrigin `json:"origin"`
}

// VisualRanking lists the strongest factors for display. Contribution is
// score·weight/100 so it reads on the same scale as the score.
func (e *Explainer) VisualRanking(factors []models.MatchFactor) []RankedFactor {
	sorted := byContribution(factors)
	if len(sorted) > e.RankingLimit {
		sorted = sorted[:e.RankingLimit]
	}

	ranked := make([]RankedFactor, 0, len(sorted))
	for _, f := range sorted {
		ranked = append(ranked, RankedFactor{
			Name:         strings.ReplaceAll(f.FactorName, "_", " "),
			Score:        f.Score,
			Weight:       f.Weight,
			Contribution: f.Contribution() / 100,
			Explanation:  f.Explanation,
			Origin:       f.ResolvedOrigin(),
		})
	}
	return ranked
}

// FormatMatchScore renders a score as an integer percentage, e.g. "78%".
func FormatMatchScore(score float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(score)))
}

func byContribution(factors []models.MatchFactor) []models.MatchFactor {
	sorted := make([]models.MatchFactor, len(factors))
	copy(sorted, factors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Contribution() > sorted[j].Contribution()
	})
	return sorted
}
