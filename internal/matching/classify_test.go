// internal/matching/classify_test.go
package matching

import (
	"fmt"
	"testing"

	"supplier-matching/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recWithFactors(id int64, factors ...models.MatchFactor) models.SupplierRecommendation {
	return models.SupplierRecommendation{SupplierID: id, MatchFactors: factors}
}

func TestSourceOf(t *testing.T) {
	tests := []struct {
		name     string
		rec      models.SupplierRecommendation
		expected AlgorithmSource
	}{
		{
			name: "ai semantic wins over trend",
			rec: recWithFactors(1,
				models.MatchFactor{FactorName: "feedback_trend_y"},
				models.MatchFactor{FactorName: "algorithm_aiSemantic_x"},
			),
			expected: SourceAIPowered,
		},
		{
			name:     "similar rfq is collaborative",
			rec:      recWithFactors(2, models.MatchFactor{FactorName: "similar_rfq_history"}),
			expected: SourceCollaborative,
		},
		{
			name:     "algorithm collaborative prefix",
			rec:      recWithFactors(3, models.MatchFactor{FactorName: "algorithm_collaborative_peers"}),
			expected: SourceCollaborative,
		},
		{
			name:     "time series prefix",
			rec:      recWithFactors(4, models.MatchFactor{FactorName: "algorithm_timeSeries_seasonal"}),
			expected: SourceTrending,
		},
		{
			name: "feature based below trending",
			rec: recWithFactors(5,
				models.MatchFactor{FactorName: "algorithm_featureBased_overlap"},
				models.MatchFactor{FactorName: "feedback_trend_momentum"},
			),
			expected: SourceTrending,
		},
		{
			name:     "feature based only",
			rec:      recWithFactors(6, models.MatchFactor{FactorName: "algorithm_featureBased_overlap"}),
			expected: SourceFeatureBased,
		},
		{
			name:     "basic factors",
			rec:      recWithFactors(7, models.MatchFactor{FactorName: FactorCategoryMatch}),
			expected: SourceBasicMatch,
		},
		{
			name:     "no factors",
			rec:      recWithFactors(8),
			expected: SourceBasicMatch,
		},
		{
			name: "structured origin beats the name",
			rec: recWithFactors(9, models.MatchFactor{
				FactorName: "embedding_distance",
				Origin:     models.OriginAISemantic,
			}),
			expected: SourceAIPowered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SourceOf(&tt.rec))
		})
	}
}

func TestClassify_AlwaysReturnsFiveOrderedBuckets(t *testing.T) {
	groups := Classify(nil)

	require.Len(t, groups, 5)
	assert.Equal(t, Sources(), []AlgorithmSource{groups[0].Source, groups[1].Source, groups[2].Source, groups[3].Source, groups[4].Source})
	for _, g := range groups {
		assert.NotNil(t, g.Recommendations)
		assert.Empty(t, g.Recommendations)
	}
}

func TestClassify_PartitionIsTotal(t *testing.T) {
	names := []string{
		"algorithm_aiSemantic_similarity",
		"similar_rfq_history",
		"feedback_trend_momentum",
		"algorithm_featureBased_coverage",
		FactorCategoryMatch,
		"algorithm_collaborative_peers",
	}

	var recs []models.SupplierRecommendation
	for i := 0; i < 60; i++ {
		var factors []models.MatchFactor
		for j, name := range names {
			if (i>>uint(j))&1 == 1 {
				factors = append(factors, models.MatchFactor{FactorName: name})
			}
		}
		recs = append(recs, recWithFactors(int64(i+1), factors...))
	}

	groups := Classify(recs)

	seen := make(map[int64]int)
	total := 0
	for _, g := range groups {
		total += len(g.Recommendations)
		for _, r := range g.Recommendations {
			seen[r.SupplierID]++
			assert.Equal(t, g.Source, SourceOf(&r), fmt.Sprintf("supplier %d", r.SupplierID))
		}
	}

	assert.Equal(t, len(recs), total)
	assert.Len(t, seen, len(recs))
	for id, count := range seen {
		assert.Equal(t, 1, count, "supplier %d placed more than once", id)
	}
}

func TestClassify_PreservesInputOrderWithinBucket(t *testing.T) {
	recs := []models.SupplierRecommendation{
		recWithFactors(3, models.MatchFactor{FactorName: FactorPriceFit}),
		recWithFactors(1, models.MatchFactor{FactorName: FactorPriceFit}),
		recWithFactors(2, models.MatchFactor{FactorName: "similar_rfq_history"}),
	}

	groups := Classify(recs)

	basic := groups[4]
	require.Equal(t, SourceBasicMatch, basic.Source)
	require.Len(t, basic.Recommendations, 2)
	assert.Equal(t, int64(3), basic.Recommendations[0].SupplierID)
	assert.Equal(t, int64(1), basic.Recommendations[1].SupplierID)
	assert.Len(t, groups[1].Recommendations, 1)
}
