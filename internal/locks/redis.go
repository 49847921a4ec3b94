package locks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stwalsh4118/landrecords/internal/config"
)

const lockKeyPrefix = "landrecords:lock:"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient connects to Redis using cfg.
// Returns nil if the URL is empty (Redis not configured).
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisLocker is a Locker shared across instances through Redis.
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker constructs a Redis-backed locker.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// Acquire sets key with NX and a TTL. The lease token guards release so an
// expired lock retaken by someone else is never deleted.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// release must run even if the request context was cancelled
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err()
		})
	}, nil
}

// Ping reports whether Redis is reachable.
func (r *RedisLocker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
