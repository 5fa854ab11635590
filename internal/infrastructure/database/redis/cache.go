package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

// ErrCacheMiss reports a key that is not in the cache.  Callers fall through
// to the backing store on a miss.
var ErrCacheMiss = errors.New(errors.ErrCodeCacheError, "cache miss")

const defaultTTL = 6 * time.Hour

// Cache is a JSON value cache with a shared key prefix.
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger logging.Logger
}

// NewCache constructs a cache over an established client.  The prefix
// namespaces every key; the TTL applies to every Set.
func NewCache(client *Client, prefix string, ttl time.Duration, logger logging.Logger) *Cache {
	if prefix == "" {
		prefix = "tariffscope"
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{rdb: client.Raw(), prefix: prefix, ttl: ttl, logger: logger.Named("cache")}
}

func (c *Cache) key(parts ...string) string {
	key := c.prefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Get unmarshals the cached value for the key into dest.  A missing key
// returns ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache read failed")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "cached value corrupt")
	}
	return nil
}

// Set stores the value under the key with the cache's TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "cache value not serializable")
	}
	if err := c.rdb.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache write failed")
	}
	return nil
}

// Delete removes a single key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.key(key)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache delete failed")
	}
	return nil
}

// Flush removes every key under the cache's prefix.  Used when a tariff-data
// refresh invalidates the whole catalog.
func (c *Cache) Flush(ctx context.Context) error {
	var cursor uint64
	pattern := c.prefix + ":*"
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "cache scan failed")
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return errors.Wrap(err, errors.ErrCodeCacheError, "cache flush failed")
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
