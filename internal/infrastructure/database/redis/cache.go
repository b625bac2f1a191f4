package redis

import (
	"context"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/patent-radar/internal/application/search"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
)

// Cache is the redis-backed byte cache behind the search response cache.
// TTLs are jittered by up to ten percent so hot keys do not expire in
// lockstep.
type Cache struct {
	client *redis.Client
	logger logging.Logger
	prefix string
}

// NewCache constructs a ready-to-use Cache.
func NewCache(client *redis.Client, logger logging.Logger, prefix string) *Cache {
	if prefix == "" {
		prefix = "patradar:"
	}
	return &Cache{client: client, logger: logger.Named("cache"), prefix: prefix}
}

var _ search.CachePort = (*Cache)(nil)

// Get returns the cached payload and whether the key was present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrCodeCacheError, "cache read failed")
	}
	return payload, true, nil
}

// Set stores the payload under the key for the jittered TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, jitterTTL(ttl)).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCacheError, "cache write failed")
	}
	return nil
}

// Delete removes keys, tolerating ones that do not exist.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCacheError, "cache delete failed")
	}
	return nil
}

// jitterTTL spreads a TTL by +/- 10%.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}
