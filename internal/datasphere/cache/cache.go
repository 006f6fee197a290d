// Package cache provides the read-through cache used for public rankings.
package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/pkg/utils/errors"
	"github.com/kart-io/datasphere/pkg/utils/json"
)

// DefaultTTL is how long a cached leaderboard page stays valid.
const DefaultTTL = 60 * time.Second

const keyPrefix = "datasphere:"

// Cache stores JSON-encodable values by key.
type Cache interface {
	// Get decodes the value stored under key into v. It reports false on a miss.
	Get(ctx context.Context, key string, v interface{}) (bool, error)
	// Set stores v under key for ttl.
	Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	// Delete removes keys.
	Delete(ctx context.Context, keys ...string) error
}

// LeaderboardKey returns the key of one leaderboard page.
func LeaderboardKey(page, limit int) string {
	return fmt.Sprintf("%sleaderboard:%d:%d", keyPrefix, page, limit)
}

// Fetch returns the cached value under key, or calls load and caches its
// result. Cache failures are logged and never fail the request.
func Fetch(ctx context.Context, c Cache, key string, ttl time.Duration, v interface{}, load func(ctx context.Context) error) error {
	hit, err := c.Get(ctx, key, v)
	if err != nil {
		logger.Warnw("Cache read failed", "key", key, "error", err.Error())
	}
	if hit {
		return nil
	}

	if err := load(ctx); err != nil {
		return err
	}

	if err := c.Set(ctx, key, v, ttl); err != nil {
		logger.Warnw("Cache write failed", "key", key, "error", err.Error())
	}
	return nil
}

// redisCache is the go-redis backed Cache.
type redisCache struct {
	client goredis.UniversalClient
}

// NewRedis creates a Cache on top of client.
func NewRedis(client goredis.UniversalClient) Cache {
	return &redisCache{client: client}
}

func (r *redisCache) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if stderrors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.ErrCache.WithCause(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.ErrCache.WithCause(err)
	}
	return true, nil
}

func (r *redisCache) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.ErrCache.WithCause(err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return errors.ErrCache.WithCause(err)
	}
	return nil
}

func (r *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return errors.ErrCache.WithCause(err)
	}
	return nil
}

// noop never stores anything.
type noop struct{}

// NewNoop returns a Cache that always misses. It is used when Redis is disabled.
func NewNoop() Cache {
	return noop{}
}

func (noop) Get(context.Context, string, interface{}) (bool, error)        { return false, nil }
func (noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (noop) Delete(context.Context, ...string) error                       { return nil }
