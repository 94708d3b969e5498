// internal/matching/view_test.go
package matching

import (
	"testing"

	"supplier-matching/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_View(t *testing.T) {
	engine := newTestEngine()
	recs := engine.Match(createTestRFQ(), []models.SupplierProfile{*createTestSupplier()}, false)
	require.Len(t, recs, 1)

	view := engine.View(recs[0])

	assert.Equal(t, recs[0], view.SupplierRecommendation)
	assert.Equal(t, "99%", view.FormattedScore)
	assert.Equal(t, recs[0].MatchReason, view.Explanation)
	assert.Equal(t, SourceBasicMatch, view.AlgorithmSource)
	assert.Len(t, view.TopFactors, DefaultRankingLimit)
	assert.Equal(t, "category match", view.TopFactors[0].Name)
}

func TestEngine_Views_NeverNil(t *testing.T) {
	views := newTestEngine().Views(nil)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestEngine_GroupViews(t *testing.T) {
	recs := []models.SupplierRecommendation{
		{SupplierID: 1, MatchScore: 90, MatchFactors: []models.MatchFactor{
			{FactorName: FactorSemanticSimilarity, Score: 90, Weight: 0.2, Origin: models.OriginAISemantic},
		}},
		{SupplierID: 2, MatchScore: 70},
	}

	groups := newTestEngine().GroupViews(recs)

	require.Len(t, groups, 5)
	assert.Equal(t, SourceAIPowered, groups[0].Source)
	require.Len(t, groups[0].Recommendations, 1)
	assert.Equal(t, int64(1), groups[0].Recommendations[0].SupplierID)
	assert.Equal(t, "90%", groups[0].Recommendations[0].FormattedScore)
	assert.Equal(t, SourceBasicMatch, groups[4].Source)
	assert.Len(t, groups[4].Recommendations, 1)
}
