package planner

import (
	"context"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"

	gocache "github.com/patrickmn/go-cache"
)

// Cache holds per-destination POI lists keyed by destination, band and order.
type Cache interface {
	Get(ctx context.Context, key string) ([]models.POI, bool)
	Set(ctx context.Context, key string, pois []models.POI)
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]models.POI, bool) { return nil, false }
func (nopCache) Set(context.Context, string, []models.POI) {}

// MemoryCache is the in-process cache used when Redis is not configured.
type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]models.POI, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	pois, ok := v.([]models.POI)
	if !ok {
		return nil, false
	}
	out := make([]models.POI, len(pois))
	copy(out, pois)
	return out, true
}

func (m *MemoryCache) Set(_ context.Context, key string, pois []models.POI) {
	cp := make([]models.POI, len(pois))
	copy(cp, pois)
	m.c.Set(key, cp, gocache.DefaultExpiration)
}
