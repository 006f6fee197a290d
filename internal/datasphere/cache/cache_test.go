package cache

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Names []string `json:"names"`
	Total int64    `json:"total"`
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedis(client)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	mr, c := newTestRedis(t)
	ctx := context.Background()
	key := LeaderboardKey(1, 10)

	var got page
	hit, err := c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, key, page{Names: []string{"ada"}, Total: 1}, DefaultTTL))
	hit, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, page{Names: []string{"ada"}, Total: 1}, got)

	mr.FastForward(DefaultTTL + time.Second)
	hit, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_Delete(t *testing.T) {
	_, c := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", page{Total: 3}, time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	hit, err := c.Get(ctx, "k", &page{})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestFetch(t *testing.T) {
	_, c := newTestRedis(t)
	ctx := context.Background()
	key := LeaderboardKey(2, 5)

	calls := 0
	load := func(v *page) func(context.Context) error {
		return func(context.Context) error {
			calls++
			v.Total = 42
			return nil
		}
	}

	var first page
	require.NoError(t, Fetch(ctx, c, key, time.Minute, &first, load(&first)))
	var second page
	require.NoError(t, Fetch(ctx, c, key, time.Minute, &second, load(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(42), second.Total)
}

func TestFetch_LoadErrorIsNotCached(t *testing.T) {
	_, c := newTestRedis(t)
	boom := stderrors.New("boom")

	var v page
	err := Fetch(context.Background(), c, "k", time.Minute, &v, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	hit, err := c.Get(context.Background(), "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestFetch_RedisDownFallsThrough(t *testing.T) {
	mr, c := newTestRedis(t)
	mr.Close()

	var v page
	err := Fetch(context.Background(), c, "k", time.Minute, &v, func(context.Context) error {
		v.Total = 7
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Total)
}

func TestNoop(t *testing.T) {
	c := NewNoop()
	require.NoError(t, c.Set(context.Background(), "k", page{Total: 1}, time.Minute))

	hit, err := c.Get(context.Background(), "k", &page{})
	require.NoError(t, err)
	assert.False(t, hit)
}
