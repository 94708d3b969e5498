// internal/store/cache.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supplier-matching/internal/common/database"
	"supplier-matching/internal/common/logger"
	"supplier-matching/internal/common/metrics"
	"supplier-matching/internal/models"
)

// Cache keeps RFQs and generated recommendations in redis. Redis failures
// are logged and treated as misses so matching never depends on the cache.
type Cache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(redis *database.RedisClient, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		redis:  redis,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "recommendation-cache"}),
	}
}

func rfqKey(id int64) string {
	return fmt.Sprintf("rfq:%d", id)
}

func recommendationsKey(rfqID int64) string {
	return fmt.Sprintf("recommendations:rfq:%d", rfqID)
}

func (c *Cache) GetRFQ(ctx context.Context, id int64) (*models.RFQ, bool) {
	var rfq models.RFQ
	if !c.get(ctx, rfqKey(id), &rfq) {
		return nil, false
	}
	return &rfq, true
}

func (c *Cache) SetRFQ(ctx context.Context, rfq *models.RFQ) {
	c.set(ctx, rfqKey(rfq.ID), rfq)
}

func (c *Cache) GetRecommendations(ctx context.Context, rfqID int64) ([]models.SupplierRecommendation, bool) {
	var recs []models.SupplierRecommendation
	if !c.get(ctx, recommendationsKey(rfqID), &recs) {
		return nil, false
	}
	if recs == nil {
		recs = []models.SupplierRecommendation{}
	}
	return recs, true
}

func (c *Cache) SetRecommendations(ctx context.Context, rfqID int64, recs []models.SupplierRecommendation) {
	c.set(ctx, recommendationsKey(rfqID), recs)
}

// InvalidateRecommendations drops the cached list, e.g. after contacted flags change.
func (c *Cache) InvalidateRecommendations(ctx context.Context, rfqID int64) {
	if err := c.redis.Del(ctx, recommendationsKey(rfqID)); err != nil {
		c.logger.Warn("cache invalidate failed", map[string]interface{}{
			"key":   recommendationsKey(rfqID),
			"error": err.Error(),
		})
	}
}

func (c *Cache) get(ctx context.Context, key string, dest interface{}) bool {
	err := c.redis.GetJSON(ctx, key, dest)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return true
	case errors.Is(err, database.ErrCacheMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return false
}

func (c *Cache) set(ctx context.Context, key string, value interface{}) {
	if err := c.redis.SetJSON(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
