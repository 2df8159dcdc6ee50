package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/klabast/wb-services/tomme-kalender/internal/matcher"
)

const renderCachePrefix = "tomme:png:"

// etagNamespace scopes the name-based UUIDs used as PNG ETags
var etagNamespace = uuid.MustParse("6f1d3c52-8a0e-4f3b-9a57-2b1c0f6e4d21")

// RenderCache stores encoded calendar images
type RenderCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// RenderCacheKey identifies one rendered calendar. The dataset fingerprint
// is part of the key, so a reload never serves a stale image.
func RenderCacheKey(fingerprint string, year int, matchedName string) string {
	fp := fingerprint
	if len(fp) > 16 {
		fp = fp[:16]
	}
	return renderCachePrefix + fp + ":" + strconv.Itoa(year) + ":" + matcher.Normalize(matchedName)
}

// ETag returns a quoted entity tag derived from a cache key
func ETag(key string) string {
	return `"` + uuid.NewSHA1(etagNamespace, []byte(key)).String() + `"`
}

// RedisCache keeps rendered images in Redis with a fixed TTL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps client
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached bytes for key; ok is false on a miss
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Set stores data under key
func (c *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NoopCache) Set(context.Context, string, []byte) error         { return nil }

// NewRenderCache connects to Redis when REDIS_ADDR is configured and
// falls back to NoopCache otherwise.
func NewRenderCache(ctx context.Context, cfg *Config) (RenderCache, func() error, error) {
	if cfg.RedisAddr == "" {
		return NoopCache{}, func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisCache(client, cfg.CacheTTL), client.Close, nil
}
