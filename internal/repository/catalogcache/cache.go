// Package catalogcache persists the built field catalog and keeps an
// in-process copy after the first load or store.
package catalogcache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/dataextract/internal/db"
	"github.com/kailas-cloud/dataextract/internal/domain"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
)

// DefaultKey is the store key of the persisted catalog.
const DefaultKey = "field_dictionary.json"

// store is the consumer interface for catalog persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Options configures a Cache.
type Options struct {
	// Key under which the catalog is stored. Defaults to DefaultKey.
	Key string
	// Debug disables caching: HasCache is always false and StoreInCache is a no-op.
	Debug bool
}

// Cache is the catalog cache. Safe for concurrent use.
type Cache struct {
	store      store
	key        string
	debug      bool
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger

	mu     sync.RWMutex
	fields []field.Field
	loaded bool
	gen    uint64

	loads singleflight.Group
}

// New creates a catalog cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly; may be nil.
func New(s store, opts Options, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	return &Cache{
		store:      s,
		key:        key,
		debug:      opts.Debug,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Debug reports whether caching is disabled.
func (c *Cache) Debug() bool { return c.debug }

// HasCache reports whether a catalog can be served by GetCache.
func (c *Cache) HasCache(ctx context.Context) bool {
	if c.debug {
		return false
	}

	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return true
	}

	ok, err := c.store.Exists(ctx, c.key)
	if err != nil {
		c.logger.Warn("Failed to check catalog cache", zap.String("key", c.key), zap.Error(err))
		return false
	}
	return ok
}

// GetCache returns the cached catalog. Returns domain.ErrCacheMiss when
// nothing is cached; callers check HasCache first or fall back to a rebuild.
func (c *Cache) GetCache(ctx context.Context) ([]field.Field, error) {
	if c.debug {
		c.incCache("miss")
		return nil, domain.ErrCacheMiss
	}

	if fields, ok := c.memory(); ok {
		c.incCache("hit")
		return fields, nil
	}

	// Concurrent first readers share a single load and decode.
	v, err, _ := c.loads.Do(c.key, func() (any, error) {
		if fields, ok := c.memory(); ok {
			return fields, nil
		}

		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		data, err := c.store.Get(ctx, c.key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				return nil, domain.ErrCacheMiss
			}
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		fields, err := decodeCatalog(data)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.fields = fields
			c.loaded = true
		}
		c.mu.Unlock()
		return fields, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			c.incCache("miss")
		} else {
			c.logger.Warn("Failed to load catalog cache", zap.String("key", c.key), zap.Error(err))
		}
		return nil, err
	}

	c.incCache("hit")
	return clone(v.([]field.Field)), nil
}

// StoreInCache persists fields and keeps them in memory. No-op in debug mode.
func (c *Cache) StoreInCache(ctx context.Context, fields []field.Field) error {
	if c.debug {
		return nil
	}

	data, err := encodeCatalog(fields)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.key, data); err != nil {
		return fmt.Errorf("store catalog: %w", err)
	}

	c.mu.Lock()
	c.fields = clone(fields)
	c.loaded = true
	c.gen++
	c.mu.Unlock()

	c.logger.Debug("Catalog cached", zap.String("key", c.key), zap.Int("fields", len(fields)))
	return nil
}

// ClearCache removes the persisted catalog and the in-process copy.
// Safe to call when nothing is cached.
func (c *Cache) ClearCache(ctx context.Context) error {
	c.mu.Lock()
	c.fields = nil
	c.loaded = false
	c.gen++
	c.mu.Unlock()
	c.loads.Forget(c.key)

	if err := c.store.Del(ctx, c.key); err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("clear catalog: %w", err)
	}
	return nil
}

func (c *Cache) memory() ([]field.Field, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, false
	}
	return clone(c.fields), true
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func clone(fields []field.Field) []field.Field {
	out := make([]field.Field, len(fields))
	copy(out, fields)
	return out
}
