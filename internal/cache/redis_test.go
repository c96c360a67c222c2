package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis, *clock) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clk := &clock{t: time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC)}
	store := NewRedisStore(client, "trailhead:")
	store.now = clk.Now
	return store, s, clk
}

func TestRedisStore_SetGet(t *testing.T) {
	store, s, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "weather:1", sample{Name: "neels", Value: 61}, 10*time.Minute, "open-meteo"))
	assert.True(t, s.Exists("trailhead:weather:1"))
	assert.Equal(t, 20*time.Minute, s.TTL("trailhead:weather:1"))

	var got sample
	entry, found, err := store.GetWithMetadata(ctx, "weather:1", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "neels", got.Name)
	assert.Equal(t, "open-meteo", entry.Source)

	_, found, err = store.GetWithMetadata(ctx, "weather:2", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_StaleEntriesKeepMetadata(t *testing.T) {
	store, _, clk := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", sample{Name: "a"}, 10*time.Minute, "open-meteo"))
	clk.Advance(15 * time.Minute)

	var got sample
	entry, found, err := store.GetWithMetadata(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "a", got.Name)
	assert.True(t, entry.IsStale(clk.Now()))
	assert.False(t, entry.IsVeryStale(clk.Now()))
}

func TestRedisStore_ExpiresVeryStale(t *testing.T) {
	store, s, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", sample{}, time.Minute, "test"))
	s.FastForward(3 * time.Minute)

	_, found, err := store.GetWithMetadata(ctx, "k", nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_Delete(t *testing.T) {
	store, s, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", sample{}, time.Minute, "test"))
	require.NoError(t, store.Delete(ctx, "k"))
	assert.False(t, s.Exists("trailhead:k"))
}

func TestRedisStore_ConnectionError(t *testing.T) {
	store, s, _ := newTestRedisStore(t)
	s.Close()

	_, _, err := store.GetWithMetadata(context.Background(), "k", nil)
	assert.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	assert.Nil(t, ConnectRedis("", ""))

	client := ConnectRedis("localhost:6379", "")
	require.NotNil(t, client)
	_ = client.Close()
}

var _ Store = (*RedisStore)(nil)
var _ Store = (*Cache)(nil)
