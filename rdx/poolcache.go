package rdx

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PoolCache stores candidate POI lists in Redis so replicas share them.
// Failures degrade to a miss.
type PoolCache struct {
	conn   *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewPoolCache(conn *redis.Client, ttl time.Duration, logger *zap.Logger) *PoolCache {
	return &PoolCache{conn: conn, ttl: ttl, logger: logger}
}

func cacheKey(key string) string { return "travelbook:" + key }

func (c *PoolCache) Get(ctx context.Context, key string) ([]models.POI, bool) {
	raw, err := c.conn.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("pool cache get", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	pois, err := decodePOIs(raw)
	if err != nil {
		c.logger.Warn("pool cache decode", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return pois, true
}

func (c *PoolCache) Set(ctx context.Context, key string, pois []models.POI) {
	raw, err := json.Marshal(pois)
	if err != nil {
		c.logger.Warn("pool cache encode", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.conn.Set(ctx, cacheKey(key), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("pool cache set", zap.String("key", key), zap.Error(err))
	}
}

func decodePOIs(raw []byte) ([]models.POI, error) {
	var pois []models.POI
	if err := json.Unmarshal(raw, &pois); err != nil {
		return nil, err
	}
	if pois == nil {
		pois = []models.POI{}
	}
	return pois, nil
}
