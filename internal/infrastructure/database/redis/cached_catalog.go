package redis

import (
	"context"

	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
)

// CacheMetrics counts cache outcomes by lookup kind.  Implementations must
// be safe for concurrent use.
type CacheMetrics interface {
	CacheHit(kind string)
	CacheMiss(kind string)
}

type nopCacheMetrics struct{}

func (nopCacheMetrics) CacheHit(string)  {}
func (nopCacheMetrics) CacheMiss(string) {}

// CachedCatalog is a read-through cache in front of a catalog repository.
// Lookups by code, children, and ancestors are cached; keyword and prefix
// searches always hit the backing store.  Cache failures degrade to the
// backing store rather than surfacing to callers.
type CachedCatalog struct {
	inner   catalog.Repository
	cache   *Cache
	logger  logging.Logger
	metrics CacheMetrics
}

var _ catalog.Repository = (*CachedCatalog)(nil)

// NewCachedCatalog wraps a catalog repository with the cache.  A nil metrics
// falls back to a nop recorder.
func NewCachedCatalog(inner catalog.Repository, cache *Cache, logger logging.Logger, metrics CacheMetrics) *CachedCatalog {
	if metrics == nil {
		metrics = nopCacheMetrics{}
	}
	return &CachedCatalog{inner: inner, cache: cache, logger: logger.Named("cached-catalog"), metrics: metrics}
}

func (c *CachedCatalog) GetByCode(ctx context.Context, code string) (*catalog.CodeEntry, error) {
	key := "code:" + catalog.Normalize(code)

	var cached catalog.CodeEntry
	if err := c.cache.Get(ctx, key, &cached); err == nil {
		c.metrics.CacheHit("entry")
		return &cached, nil
	} else if err != ErrCacheMiss {
		c.logger.Debug("Cache read failed, falling through", logging.Err(err))
	}
	c.metrics.CacheMiss("entry")

	entry, err := c.inner.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, entry); err != nil {
		c.logger.Debug("Cache write failed", logging.Err(err))
	}
	return entry, nil
}

func (c *CachedCatalog) GetChildren(ctx context.Context, parentCode string) ([]*catalog.CodeEntry, error) {
	key := "children:" + catalog.Normalize(parentCode)

	var cached []*catalog.CodeEntry
	if err := c.cache.Get(ctx, key, &cached); err == nil {
		c.metrics.CacheHit("children")
		return cached, nil
	} else if err != ErrCacheMiss {
		c.logger.Debug("Cache read failed, falling through", logging.Err(err))
	}
	c.metrics.CacheMiss("children")

	children, err := c.inner.GetChildren(ctx, parentCode)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, children); err != nil {
		c.logger.Debug("Cache write failed", logging.Err(err))
	}
	return children, nil
}

func (c *CachedCatalog) GetByPrefix(ctx context.Context, prefix string) ([]*catalog.CodeEntry, error) {
	return c.inner.GetByPrefix(ctx, prefix)
}

func (c *CachedCatalog) SearchByKeyword(ctx context.Context, tokens []string, filter catalog.SearchFilter) ([]*catalog.CodeEntry, error) {
	return c.inner.SearchByKeyword(ctx, tokens, filter)
}

func (c *CachedCatalog) GetAncestors(ctx context.Context, code string) ([]*catalog.CodeEntry, error) {
	normalized := catalog.Normalize(code)
	key := "ancestors:" + normalized

	var cached []*catalog.CodeEntry
	if err := c.cache.Get(ctx, key, &cached); err == nil {
		c.metrics.CacheHit("ancestors")
		return cached, nil
	} else if err != ErrCacheMiss {
		c.logger.Debug("Cache read failed, falling through", logging.Err(err))
	}
	c.metrics.CacheMiss("ancestors")

	ancestors, err := c.inner.GetAncestors(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, ancestors); err != nil {
		c.logger.Debug("Cache write failed", logging.Err(err))
	}
	return ancestors, nil
}

// Invalidate flushes every cached catalog entry.  Called when a tariff-data
// refresh event lands.
func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	return c.cache.Flush(ctx)
}
