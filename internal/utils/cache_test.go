package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCacheRoundtrip(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, SetCache(ctx, rdb, "key", payload{Name: "ali", Count: 3}, time.Minute))

	var got payload
	found, err := GetCache(ctx, rdb, "key", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, payload{Name: "ali", Count: 3}, got)
}

func TestGetCacheMiss(t *testing.T) {
	rdb := testRedis(t)

	var got map[string]any
	found, err := GetCache(context.Background(), rdb, "missing", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDeleteCache(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()

	require.NoError(t, SetCache(ctx, rdb, "key", "value", time.Minute))
	require.NoError(t, DeleteCache(ctx, rdb, "key"))

	var got string
	found, err := GetCache(ctx, rdb, "key", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDeleteCachePrefix(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()

	require.NoError(t, SetCache(ctx, rdb, "feed:page=1", "a", time.Minute))
	require.NoError(t, SetCache(ctx, rdb, "feed:page=2", "b", time.Minute))
	require.NoError(t, SetCache(ctx, rdb, "wallet:user:1", "c", time.Minute))

	require.NoError(t, DeleteCachePrefix(ctx, rdb, "feed:"))

	var got string
	found, err := GetCache(ctx, rdb, "feed:page=1", &got)
	require.NoError(t, err)
	require.False(t, found)
	found, err = GetCache(ctx, rdb, "feed:page=2", &got)
	require.NoError(t, err)
	require.False(t, found)

	// Unrelated keys survive
	found, err = GetCache(ctx, rdb, "wallet:user:1", &got)
	require.NoError(t, err)
	require.True(t, found)
}
