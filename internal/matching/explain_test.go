// internal/matching/explain_test.go
package matching

import (
	"testing"

	"supplier-matching/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFactors() []models.MatchFactor {
	return []models.MatchFactor{
		{FactorName: "price_fit", Score: 50, Weight: 0.2, Explanation: "Estimated cost 900.00 is within budget"},
		{FactorName: "category_match", Score: 100, Weight: 0.3, Explanation: "Supplier serves the Steel category"},
		{FactorName: "location_proximity", Score: 90, Weight: 0.2, Explanation: "Supplier location is 12km from delivery point"},
		{FactorName: "compliance_verification", Score: 100, Weight: 0.05, Explanation: "Verified supplier with risk grade A"},
		{FactorName: "delivery_timeline", Score: 40, Weight: 0.1, Explanation: "Typical lead time of 20 days exceeds the 8-day deadline"},
		{FactorName: "historical_reliability", Score: 70, Weight: 0.15, Explanation: "Supplier delivered 80% of 12 past orders on time"},
	}
}

// ==========================
// Explain
// ==========================

func TestExplainer_Explain(t *testing.T) {
	explainer := NewExplainer(0, 0)

	tests := []struct {
		name     string
		rec      models.SupplierRecommendation
		expected string
	}{
		{
			name: "existing reason wins",
			rec: models.SupplierRecommendation{
				MatchReason:  "Preferred vendor for this buyer",
				MatchFactors: sampleFactors(),
			},
			expected: "Preferred vendor for this buyer",
		},
		{
			name:     "top two factors by contribution",
			rec:      models.SupplierRecommendation{MatchFactors: sampleFactors()},
			expected: "Supplier serves the Steel category. Supplier location is 12km from delivery point",
		},
		{
			name: "empty explanations are skipped",
			rec: models.SupplierRecommendation{MatchFactors: []models.MatchFactor{
				{FactorName: "a", Score: 100, Weight: 1, Explanation: "  "},
				{FactorName: "b", Score: 90, Weight: 1, Explanation: "Strong category fit"},
				{FactorName: "c", Score: 10, Weight: 1, Explanation: "Far away"},
			}},
			expected: "Strong category fit",
		},
		{
			name: "no usable explanations",
			rec: models.SupplierRecommendation{MatchFactors: []models.MatchFactor{
				{FactorName: "a", Score: 100, Weight: 1},
				{FactorName: "b", Score: 90, Weight: 1},
			}},
			expected: FallbackExplanation,
		},
		{
			name:     "no factors",
			rec:      models.SupplierRecommendation{MatchScore: 73},
			expected: "This supplier has a match score of 73%.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, explainer.Explain(&tt.rec))
		})
	}
}

func TestExplainer_Explain_IsPureAndIdempotent(t *testing.T) {
	explainer := NewExplainer(2, 5)
	rec := models.SupplierRecommendation{MatchFactors: sampleFactors()}
	before := append([]models.MatchFactor(nil), rec.MatchFactors...)

	first := explainer.Explain(&rec)
	second := explainer.Explain(&rec)

	assert.Equal(t, first, second)
	assert.Equal(t, before, rec.MatchFactors)
	assert.Empty(t, rec.MatchReason)
}

func TestExplainer_Explain_ConfigurableTopN(t *testing.T) {
	explainer := NewExplainer(3, 5)
	rec := models.SupplierRecommendation{MatchFactors: sampleFactors()}

	assert.Equal(t,
		"Supplier serves the Steel category. Supplier location is 12km from delivery point. Supplier delivered 80% of 12 past orders on time",
		explainer.Explain(&rec))
}

// ==========================
// Visual ranking
// ==========================

func TestExplainer_VisualRanking(t *testing.T) {
	explainer := NewExplainer(2, 5)

	ranked := explainer.VisualRanking(sampleFactors())

	require.Len(t, ranked, 5)
	assert.Equal(t, "category match", ranked[0].Name)
	assert.InDelta(t, 0.30, ranked[0].Contribution, 1e-9)
	assert.Equal(t, "location proximity", ranked[1].Name)
	assert.InDelta(t, 0.18, ranked[1].Contribution, 1e-9)
	assert.Equal(t, "historical reliability", ranked[2].Name)
	assert.Equal(t, "price fit", ranked[3].Name)
	assert.Equal(t, "compliance verification", ranked[4].Name)
	assert.Equal(t, models.OriginBasic, ranked[0].Origin)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Contribution, ranked[i].Contribution)
	}
}

func TestExplainer_OutOfRangeFactorsRankAsAggregated(t *testing.T) {
	factors := []models.MatchFactor{
		{FactorName: "legacy_weight", Score: 60, Weight: 5, Explanation: "Stored with an oversized weight"},
		{FactorName: "category_match", Score: 90, Weight: 0.9, Explanation: "Supplier serves the Steel category"},
		{FactorName: "legacy_score", Score: 400, Weight: 0.5, Explanation: "Stored with an oversized score"},
	}

	ranked := NewExplainer(1, 5).VisualRanking(factors)

	require.Len(t, ranked, 3)
	assert.Equal(t, "category match", ranked[0].Name)
	assert.InDelta(t, 0.81, ranked[0].Contribution, 1e-9)
	assert.InDelta(t, 0.60, ranked[1].Contribution, 1e-9)
	assert.InDelta(t, 0.50, ranked[2].Contribution, 1e-9)

	rec := models.SupplierRecommendation{MatchFactors: factors}
	assert.Equal(t, "Supplier serves the Steel category", NewExplainer(1, 5).Explain(&rec))
}

func TestExplainer_VisualRanking_Empty(t *testing.T) {
	ranked := NewExplainer(2, 5).VisualRanking(nil)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestFormatMatchScore(t *testing.T) {
	assert.Equal(t, "78%", FormatMatchScore(78))
	assert.Equal(t, "79%", FormatMatchScore(78.5))
	assert.Equal(t, "0%", FormatMatchScore(0))
	assert.Equal(t, "100%", FormatMatchScore(99.6))
}
