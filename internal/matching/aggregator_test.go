// internal/matching/aggregator_test.go
package matching

import (
	"math/rand"
	"testing"
	"time"

	"supplier-matching/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Aggregation
// ==========================

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		factors  []models.MatchFactor
		expected int
	}{
		{
			name: "weighted average",
			factors: []models.MatchFactor{
				{FactorName: "a", Score: 80, Weight: 0.5},
				{FactorName: "b", Score: 60, Weight: 0.3},
				{FactorName: "c", Score: 100, Weight: 0.2},
			},
			expected: 78,
		},
		{
			name: "weights need not sum to one",
			factors: []models.MatchFactor{
				{FactorName: "a", Score: 100, Weight: 0.2},
				{FactorName: "b", Score: 50, Weight: 0.2},
			},
			expected: 75,
		},
		{
			name: "all weights zero",
			factors: []models.MatchFactor{
				{FactorName: "a", Score: 90, Weight: 0},
				{FactorName: "b", Score: 40, Weight: 0},
			},
			expected: 0,
		},
		{
			name:     "no factors",
			factors:  nil,
			expected: 0,
		},
		{
			name: "out of range inputs are clamped",
			factors: []models.MatchFactor{
				{FactorName: "a", Score: 250, Weight: 3},
				{FactorName: "b", Score: -40, Weight: -1},
			},
			expected: 100,
		},
		{
			name: "rounds half up",
			factors: []models.MatchFactor{
				{FactorName: "a", Score: 81, Weight: 0.5},
				{FactorName: "b", Score: 80, Weight: 0.5},
			},
			expected: 81,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Aggregate(tt.factors))
		})
	}
}

func TestAggregator_Recommend_Threshold(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	supplier := &models.SupplierProfile{ID: 9, CompanyName: "Acme Steel"}

	tests := []struct {
		name        string
		threshold   int
		score       float64
		recommended bool
	}{
		{name: "at default threshold", threshold: DefaultRecommendationThreshold, score: 80, recommended: true},
		{name: "just below default threshold", threshold: DefaultRecommendationThreshold, score: 79, recommended: false},
		{name: "custom threshold", threshold: 60, score: 65, recommended: true},
		{name: "zero threshold recommends everything", threshold: 0, score: 0, recommended: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(tt.threshold)
			rec := agg.Recommend(42, supplier, []models.MatchFactor{
				{FactorName: FactorCategoryMatch, Score: tt.score, Weight: 1},
			}, now)

			assert.Equal(t, int(tt.score), rec.MatchScore)
			assert.Equal(t, tt.recommended, rec.Recommended)
			assert.Equal(t, int64(42), rec.RFQID)
			assert.Equal(t, int64(9), rec.SupplierID)
			assert.Equal(t, "Acme Steel", rec.SupplierName)
			assert.Equal(t, now, rec.CreatedAt)
			assert.Empty(t, rec.MatchReason)
		})
	}
}

func TestAggregator_Recommend_NilFactors(t *testing.T) {
	rec := NewAggregator(80).Recommend(1, &models.SupplierProfile{ID: 2}, nil, time.Now())
	assert.NotNil(t, rec.MatchFactors)
	assert.Equal(t, 0, rec.MatchScore)
	assert.False(t, rec.Recommended)
}

// ==========================
// Ranking
// ==========================

func TestRank_OrdersByScoreThenSupplierID(t *testing.T) {
	recs := []models.SupplierRecommendation{
		{SupplierID: 5, MatchScore: 70},
		{SupplierID: 3, MatchScore: 90},
		{SupplierID: 1, MatchScore: 70},
		{SupplierID: 2, MatchScore: 90},
		{SupplierID: 4, MatchScore: 10},
	}

	ranked := Rank(recs)

	var ids []int64
	for _, r := range ranked {
		ids = append(ids, r.SupplierID)
	}
	assert.Equal(t, []int64{2, 3, 1, 5, 4}, ids)
}

func TestRank_IsDeterministic(t *testing.T) {
	base := make([]models.SupplierRecommendation, 0, 30)
	for i := 0; i < 30; i++ {
		base = append(base, models.SupplierRecommendation{SupplierID: int64(i + 1), MatchScore: (i * 7) % 5 * 20})
	}

	first := Rank(append([]models.SupplierRecommendation(nil), base...))

	shuffled := append([]models.SupplierRecommendation(nil), base...)
	rnd := rand.New(rand.NewSource(7))
	rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	second := Rank(shuffled)

	require.Len(t, second, len(first))
	assert.Equal(t, first, second)
	assert.Equal(t, first, Rank(second))
}
