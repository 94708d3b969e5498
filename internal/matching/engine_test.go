// internal/matching/engine_test.go
package matching

import (
	"testing"
	"time"

	"supplier-matching/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultOptions()).WithClock(func() time.Time { return testNow })
}

func TestEngine_Match(t *testing.T) {
	strong := createTestSupplier()

	weak := createTestSupplier()
	weak.ID = 3
	weak.CompanyName = "Far Away Metals"
	weak.Categories = []string{"textiles"}
	weak.Location = models.Location{City: "Shenzhen", Country: "China"}
	weak.Verified = false

	unknown := models.SupplierProfile{ID: 2, CompanyName: "New Vendor"}

	recs := newTestEngine().Match(createTestRFQ(), []models.SupplierProfile{unknown, *weak, *strong}, false)

	require.Len(t, recs, 3)
	assert.Equal(t, int64(7), recs[0].SupplierID)
	assert.Equal(t, 99, recs[0].MatchScore)
	assert.True(t, recs[0].Recommended)
	assert.Equal(t, "Supplier serves the Steel Pipes category. Supplier location is 0km from delivery point", recs[0].MatchReason)
	assert.Equal(t, "Deccan Tubes", recs[0].SupplierName)
	assert.Equal(t, testNow, recs[0].CreatedAt)

	assert.Equal(t, int64(3), recs[1].SupplierID)
	assert.False(t, recs[1].Recommended)
	assert.Equal(t, int64(2), recs[2].SupplierID)

	for _, r := range recs {
		assert.Equal(t, int64(1001), r.RFQID)
		assert.Equal(t, Aggregate(r.MatchFactors), r.MatchScore)
		assert.NotEmpty(t, r.MatchReason)
	}
}

func TestEngine_Match_IsDeterministic(t *testing.T) {
	engine := newTestEngine()
	suppliers := []models.SupplierProfile{*createTestSupplier(), {ID: 2}, {ID: 1}}

	first := engine.Match(createTestRFQ(), suppliers, true)
	second := engine.Match(createTestRFQ(), suppliers, true)

	assert.Equal(t, first, second)
}

func TestEngine_Match_EmptyPool(t *testing.T) {
	recs := newTestEngine().Match(createTestRFQ(), nil, true)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)

	assert.Empty(t, newTestEngine().Match(nil, []models.SupplierProfile{{ID: 1}}, false))
}

func TestEngine_Match_CustomThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.Threshold = 100
	engine := NewEngine(opts).WithClock(func() time.Time { return testNow })

	recs := engine.Match(createTestRFQ(), []models.SupplierProfile{*createTestSupplier()}, false)

	require.Len(t, recs, 1)
	assert.Equal(t, 99, recs[0].MatchScore)
	assert.False(t, recs[0].Recommended)
	assert.Equal(t, 100, engine.Aggregator().Threshold)
}
