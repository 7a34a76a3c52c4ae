package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mlbstats/ingestion/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "mlbstats:"

// Config holds Redis connection settings
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisCache stores raw game documents and holds the run lock
type RedisCache struct {
	client     *redis.Client
	payloadTTL time.Duration
}

// releaseScript deletes the lock only if the caller still owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config, payloadTTL time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{client: client, payloadTTL: payloadTTL}, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping checks the connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func payloadKey(gamePK int64) string {
	return keyPrefix + "payload:" + strconv.FormatInt(gamePK, 10)
}

func lockKey(name string) string {
	return keyPrefix + "lock:" + name
}

// GetPayload returns the cached document for a game, or nil on a miss
func (c *RedisCache) GetPayload(ctx context.Context, gamePK int64) ([]byte, error) {
	start := time.Now()
	raw, err := c.client.Get(ctx, payloadKey(gamePK)).Bytes()
	metrics.RecordCacheOperation("get", time.Since(start).Seconds())
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss()
		return nil, nil
	}
	if err != nil {
		metrics.RecordError("cache", "get")
		return nil, err
	}

	metrics.RecordCacheHit()
	return raw, nil
}

// SetPayload stores a game document for the payload TTL
func (c *RedisCache) SetPayload(ctx context.Context, gamePK int64, raw []byte) error {
	start := time.Now()
	err := c.client.Set(ctx, payloadKey(gamePK), raw, c.payloadTTL).Err()
	metrics.RecordCacheOperation("set", time.Since(start).Seconds())
	if err != nil {
		metrics.RecordError("cache", "set")
	}
	return err
}

// AcquireLock takes a named lock for ttl. ok is false when another holder
// has it. The returned token is required to release it.
func (c *RedisCache) AcquireLock(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = c.client.SetNX(ctx, lockKey(name), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return "", false, nil
	}

	log.Debug().Str("lock", name).Dur("ttl", ttl).Msg("Acquired lock")
	return token, true, nil
}

// ReleaseLock releases a lock held with token. A lock that expired or was
// taken over is left alone.
func (c *RedisCache) ReleaseLock(ctx context.Context, name, token string) error {
	n, err := releaseScript.Run(ctx, c.client, []string{lockKey(name)}, token).Int()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	if n == 0 {
		log.Warn().Str("lock", name).Msg("Lock was no longer held at release")
	}
	return nil
}
