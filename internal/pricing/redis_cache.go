package pricing

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on Redis, for deployments where multiple
// replicas should share one price cache. Redis errors degrade to a
// cache miss so an unreachable Redis never fails a resolution.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed price cache.
func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: client, ttl: ttl}
}

var _ Cache = (*RedisCache)(nil)

// redisKey namespaces price entries in a shared Redis.
func redisKey(mint string, hourBucket int64) string {
	return "price:" + cacheKey(mint, hourBucket)
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, mint string, hourBucket int64) (float64, bool) {
	price, err := c.client.Get(ctx, redisKey(mint, hourBucket)).Float64()
	if err != nil {
		// redis.Nil means not cached; anything else degrades to a miss.
		return 0, false
	}
	return price, true
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, mint string, hourBucket int64, price float64) {
	c.client.Set(ctx, redisKey(mint, hourBucket), price, c.ttl)
}

// Close releases the underlying Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
