package rdx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unreachable points at a port nothing listens on.
func unreachable() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestDecodePOIs(t *testing.T) {
	pois, err := decodePOIs([]byte(`[{"id":"p1","name":"Hue Citadel","entryFee":{"adult":200000},"recommendedDuration":{"hours":2,"minutes":30}}]`))
	require.NoError(t, err)
	require.Len(t, pois, 1)
	assert.Equal(t, "p1", pois[0].POIID)
	assert.Equal(t, 200000.0, pois[0].EntryFee.Adult)
	assert.Equal(t, 30, pois[0].RecommendedDuration.Minutes)

	pois, err = decodePOIs([]byte(`null`))
	require.NoError(t, err)
	assert.NotNil(t, pois)

	_, err = decodePOIs([]byte(`{`))
	assert.Error(t, err)
}

func TestPoolCacheDegradesToMiss(t *testing.T) {
	conn := unreachable()
	defer conn.Close()

	c := NewPoolCache(conn, time.Minute, zap.NewNop())
	ctx := context.Background()

	c.Set(ctx, "pool:d1:any:0", []models.POI{{POIID: "p1"}})
	_, ok := c.Get(ctx, "pool:d1:any:0")
	assert.False(t, ok)
	assert.Equal(t, "travelbook:pool:d1:any:0", cacheKey("pool:d1:any:0"))
}

func TestLockSurfacesConnectionErrors(t *testing.T) {
	conn := unreachable()
	defer conn.Close()

	l := NewLocker(conn, zap.NewNop())
	_, err := l.Lock(context.Background(), "customize:r1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrLockNotAcquired))
}
