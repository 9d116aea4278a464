package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultCacheTTL is how long nearby search results are reused.
const DefaultCacheTTL = 10 * time.Minute

// Cache is the subset of the Redis client used by CachedClient.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedClient caches nearby searches keyed by coordinates rounded to three
// decimals (about 100 m) and radius. Cache failures fall through to the
// wrapped client.
type CachedClient struct {
	next   Client
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedClient(next Client, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedClient {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedClient{next: next, cache: cache, ttl: ttl, logger: logger}
}

func nearbyKey(at LatLng, radius int) string {
	return fmt.Sprintf("places:pharmacy:%.3f:%.3f:%d", at.Lat, at.Lng, radius)
}

func (c *CachedClient) NearbyPharmacies(ctx context.Context, at LatLng, radiusMeters int) ([]Place, error) {
	key := nearbyKey(at, radiusMeters)

	raw, err := c.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []Place
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable places cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Str("key", key).Msg("places cache read failed")
	}

	result, err := c.next.NearbyPharmacies(ctx, at, radiusMeters)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("places cache write failed")
		}
	}
	return result, nil
}

func (c *CachedClient) Details(ctx context.Context, placeID string) (*Details, error) {
	return c.next.Details(ctx, placeID)
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
