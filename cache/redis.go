package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisOpTimeout bounds each cache round trip so a slow Redis cannot stall a
// translation.
const redisOpTimeout = 2 * time.Second

// RedisCache is a Redis-backed translation memory, useful when several
// machines or CI jobs translate the same site.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string        // Redis connection URL (e.g. "redis://localhost:6379/0")
	TTL       time.Duration // Entry lifetime (0 = no expiration)
	KeyPrefix string        // Prefix for all keys (default: DefaultKeyPrefix)
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	c := NewRedisCacheFromClient(redis.NewClient(opts), cfg.TTL, cfg.KeyPrefix)
	if err := c.Ping(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a value. Redis errors are logged and reported as a miss.
func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		log.Debugw("redis get failed", "key", key, "err", err)
		return "", false
	}
	return val, true
}

// Set stores a value.
func (c *RedisCache) Set(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return c.client.Set(ctx, c.keyPrefix+key, value, c.ttl).Err()
}

// Entries returns every entry under the key prefix, with the prefix removed.
func (c *RedisCache) Entries(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", 500).Result()
		if err != nil {
			return nil, err
		}
		if len(keys) > 0 {
			vals, err := c.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, err
			}
			for i, v := range vals {
				if s, ok := v.(string); ok {
					out[strings.TrimPrefix(keys[i], c.keyPrefix)] = s
				}
			}
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

var _ TranslationCache = (*RedisCache)(nil)
