package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MultiLevel is a read-through cache: memory first, then Redis (when
// configured), then the caller's fetch function. Concurrent misses for the
// same key share a single fetch. Failed fetches are never cached.
type MultiLevel struct {
	mem          Cache
	redis        *redis.Client
	memTTL       time.Duration
	redisTTL     time.Duration
	redisTimeout time.Duration
	group        singleflight.Group
	onResult     func(level string)
}

type MultiLevelOption func(*MultiLevel)

func WithMemoryTTL(ttl time.Duration) MultiLevelOption {
	return func(m *MultiLevel) { m.memTTL = ttl }
}

func WithRedisTTL(ttl time.Duration) MultiLevelOption {
	return func(m *MultiLevel) { m.redisTTL = ttl }
}

// WithRedisTimeout bounds every Redis round trip. Default 50ms; a
// non-positive d keeps the default.
func WithRedisTimeout(d time.Duration) MultiLevelOption {
	return func(m *MultiLevel) {
		if d > 0 {
			m.redisTimeout = d
		}
	}
}

// WithResultHook is called with "memory", "redis" or "origin" for every
// successful lookup.
func WithResultHook(fn func(level string)) MultiLevelOption {
	return func(m *MultiLevel) { m.onResult = fn }
}

// NewMultiLevel layers mem over redisClient. redisClient may be nil.
func NewMultiLevel(mem Cache, redisClient *redis.Client, opts ...MultiLevelOption) *MultiLevel {
	m := &MultiLevel{
		mem:          mem,
		redis:        redisClient,
		memTTL:       time.Minute,
		redisTTL:     5 * time.Minute,
		redisTimeout: 50 * time.Millisecond,
		onResult:     func(string) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetString returns the value cached under key or loads it with fetch.
func (m *MultiLevel) GetString(
	ctx context.Context,
	key string,
	fetch func(ctx context.Context) (string, error),
) (string, error) {
	if val, ok := m.memString(key); ok {
		m.onResult("memory")
		return val, nil
	}

	result, err, _ := m.group.Do(key, func() (any, error) {
		// another caller may have filled memory while we waited
		if val, ok := m.memString(key); ok {
			m.onResult("memory")
			return val, nil
		}

		if val, ok := m.redisGet(ctx, key); ok {
			m.mem.SetWithTTL(key, val, m.memTTL)
			m.onResult("redis")
			return val, nil
		}

		val, err := fetch(ctx)
		if err != nil {
			return "", err
		}

		m.mem.SetWithTTL(key, val, m.memTTL)
		m.redisSet(ctx, key, val)
		m.onResult("origin")
		return val, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (m *MultiLevel) memString(key string) (string, bool) {
	v, ok := m.mem.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (m *MultiLevel) redisGet(ctx context.Context, key string) (string, bool) {
	if m.redis == nil {
		return "", false
	}
	rctx, cancel := context.WithTimeout(ctx, m.redisTimeout)
	defer cancel()

	val, err := m.redis.Get(rctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Debug("Redis get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, val != ""
}

func (m *MultiLevel) redisSet(ctx context.Context, key, val string) {
	if m.redis == nil {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.redisTimeout)
	defer cancel()

	if err := m.redis.Set(rctx, key, val, m.redisTTL).Err(); err != nil {
		zap.L().Debug("Redis set failed", zap.String("key", key), zap.Error(err))
	}
}
