package app

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisCache(t *testing.T) {
	mr, client := newMiniRedis(t)
	cache := NewRedisCache(client, time.Hour)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "tomme:png:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "tomme:png:k", []byte("image")))
	data, ok, err := cache.Get(ctx, "tomme:png:k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("image"), data)
	assert.Equal(t, time.Hour, mr.TTL("tomme:png:k"))

	mr.FastForward(2 * time.Hour)
	_, ok, err = cache.Get(ctx, "tomme:png:k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheUnavailable(t *testing.T) {
	mr, client := newMiniRedis(t)
	cache := NewRedisCache(client, time.Hour)
	mr.Close()

	_, ok, err := cache.Get(context.Background(), "tomme:png:k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, cache.Set(context.Background(), "tomme:png:k", []byte("x")))
}

func TestNewRenderCache(t *testing.T) {
	cfg := testConfig()

	cache, closeFn, err := NewRenderCache(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, NoopCache{}, cache)
	assert.NoError(t, closeFn())

	mr := miniredis.RunT(t)
	cfg.RedisAddr = mr.Addr()
	cfg.CacheTTL = time.Minute
	cache, closeFn, err = NewRenderCache(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &RedisCache{}, cache)
	assert.NoError(t, closeFn())

	mr.Close()
	_, _, err = NewRenderCache(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRenderCacheKey(t *testing.T) {
	fp := strings.Repeat("ab", 32)

	key := RenderCacheKey(fp, 2025, "Kirkevåg  3")
	assert.Equal(t, "tomme:png:abababababababab:2025:kirkevag 3", key)
	assert.Equal(t, key, RenderCacheKey(fp, 2025, "KIRKEVAG 3"))
	assert.NotEqual(t, key, RenderCacheKey(fp, 2026, "Kirkevåg 3"))
	assert.NotEqual(t, key, RenderCacheKey(strings.Repeat("cd", 32), 2025, "Kirkevåg 3"))

	etag := ETag(key)
	assert.True(t, strings.HasPrefix(etag, `"`) && strings.HasSuffix(etag, `"`))
	assert.Equal(t, etag, ETag(key))
}

func TestHandleCalendarPNGWithRedis(t *testing.T) {
	mr, client := newMiniRedis(t)
	s := newTestServer(t, NewRedisCache(client, time.Hour))
	params := url.Values{"address": {"Storgata 14"}, "year": {"2025"}}

	w := get(t, s.Routes(), "/api/calendar.png", params)
	require.Equal(t, 200, w.Code)

	key := RenderCacheKey(s.Dataset().Fingerprint(), 2025, "Storgata 14")
	stored, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, w.Body.String(), stored)
}
