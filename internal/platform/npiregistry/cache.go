package npiregistry

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "npi:"

// store is the subset of *redis.Client the cache uses.
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type cacheEntry struct {
	Found    bool      `json:"found"`
	Provider *Provider `json:"provider,omitempty"`
}

// Cache puts a redis read-through cache in front of another Lookuper. Both
// hits and ErrNotFound answers are cached for ttl; upstream errors are not.
// Redis failures are logged and bypassed.
type Cache struct {
	next   Lookuper
	store  store
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCache(next Lookuper, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Cache {
	return newCache(next, client, ttl, logger)
}

func newCache(next Lookuper, s store, ttl time.Duration, logger zerolog.Logger) *Cache {
	return &Cache{next: next, store: s, ttl: ttl, logger: logger}
}

func (c *Cache) Lookup(ctx context.Context, npi string) (*Provider, error) {
	key := keyPrefix + npi

	raw, err := c.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entry cacheEntry
		if jerr := json.Unmarshal(raw, &entry); jerr == nil {
			if !entry.Found {
				return nil, ErrNotFound
			}
			return entry.Provider, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding unreadable npi cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Str("key", key).Msg("npi cache read failed")
	}

	p, err := c.next.Lookup(ctx, npi)
	var entry cacheEntry
	switch {
	case err == nil:
		entry = cacheEntry{Found: true, Provider: p}
	case errors.Is(err, ErrNotFound):
		entry = cacheEntry{Found: false}
	default:
		return nil, err
	}

	if data, merr := json.Marshal(entry); merr == nil {
		if serr := c.store.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.logger.Warn().Err(serr).Str("key", key).Msg("npi cache write failed")
		}
	}
	return p, err
}
