package loader

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pivolan/grades_analyzer/domain/models"
)

// LoadFunc produces a fresh copy of a table for a cache key.
type LoadFunc func(ctx context.Context) (*models.RawTable, error)

type cacheEntry struct {
	table     *models.RawTable
	expiresAt time.Time
}

// Cache keeps loaded tables for a fixed TTL. Concurrent misses on the same
// key share a single load.
type Cache struct {
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

func NewCache(ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached table for key or calls load on a miss.
func (c *Cache) Get(ctx context.Context, key string, load LoadFunc) (*models.RawTable, error) {
	if t, ok := c.lookup(key); ok {
		return t, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		if t, ok := c.lookup(key); ok {
			return t, nil
		}
		start := c.now()
		t, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.Put(key, t)
		c.logger.Info("table loaded",
			zap.String("key", key),
			zap.Int("rows", len(t.Rows)),
			zap.Duration("took", c.now().Sub(start)))
		return t, nil
	})
	if err != nil {
		c.logger.Warn("table load failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	if shared {
		c.logger.Debug("table load shared", zap.String("key", key))
	}
	return v.(*models.RawTable), nil
}

func (c *Cache) Put(key string, t *models.RawTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{table: t, expiresAt: c.now().Add(c.ttl)}
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Prune drops expired entries and returns how many were removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(key string) (*models.RawTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.table, true
}
