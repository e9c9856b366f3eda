// Package cache provides the translation memory: a per-string store of
// previous translations keyed by text hash and target language.
package cache

import (
	"time"

	"github.com/ZaguanLabs/sitetrans"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("sitetrans/cache")

// TranslationCache is an alias to the main package interface.
type TranslationCache = sitetrans.TranslationCache

// DefaultKeyPrefix namespaces translation memory keys in shared stores.
const DefaultKeyPrefix = "sitetrans:"

// Config selects and configures a translation memory backend.
type Config struct {
	RedisURL  string        // Use Redis when set, otherwise memory
	TTL       time.Duration // Entry lifetime; zero keeps entries forever
	KeyPrefix string        // Redis key prefix (default: DefaultKeyPrefix)
}

// New returns a Redis cache when cfg.RedisURL is set and an in-memory cache
// otherwise.
func New(cfg Config) (TranslationCache, error) {
	if cfg.RedisURL == "" {
		return NewInMemoryCache(cfg.TTL), nil
	}
	c, err := NewRedisCache(RedisConfig{URL: cfg.RedisURL, TTL: cfg.TTL, KeyPrefix: cfg.KeyPrefix})
	if err != nil {
		return nil, &sitetrans.CacheError{Message: "connecting to redis", Cause: err}
	}
	log.Infow("using redis translation memory", "prefix", c.keyPrefix)
	return c, nil
}
