package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"

	"github.com/dpup/trailhead/server/internal/metrics"
)

// Store is the cache contract shared by the in-memory and Redis backends.
// Values are stored as JSON.
type Store interface {
	Set(ctx context.Context, key string, data interface{}, refreshInterval time.Duration, source string) error
	GetWithMetadata(ctx context.Context, key string, result interface{}) (*CacheEntry, bool, error)
	Delete(ctx context.Context, key string) error
}

// Cache provides thread-safe in-memory caching with TTL
type Cache struct {
	entries map[string]*CacheEntry
	mutex   sync.RWMutex
	now     func() time.Time
}

// CacheEntry represents a cached item with metadata
type CacheEntry struct {
	Key             string        `json:"key"`
	Data            []byte        `json:"data"`
	CreatedAt       time.Time     `json:"created_at"`
	ExpiresAt       time.Time     `json:"expires_at"`
	RefreshInterval time.Duration `json:"refresh_interval"`
	Source          string        `json:"source"`
}

// IsStale reports whether the entry is past its refresh interval
func (e *CacheEntry) IsStale(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// IsVeryStale reports whether the entry is older than twice its refresh
// interval; such data is no longer served as a fallback.
func (e *CacheEntry) IsVeryStale(now time.Time) bool {
	return now.After(e.CreatedAt.Add(e.RefreshInterval * 2))
}

// NewCache creates a new in-memory cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*CacheEntry),
		now:     time.Now,
	}
}

func newEntry(key string, data interface{}, refreshInterval time.Duration, source string, now time.Time) (*CacheEntry, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data for cache: %w", err)
	}
	return &CacheEntry{
		Key:             key,
		Data:            jsonData,
		CreatedAt:       now,
		ExpiresAt:       now.Add(refreshInterval),
		RefreshInterval: refreshInterval,
		Source:          source,
	}, nil
}

// Set stores data in cache with TTL based on refresh interval
func (c *Cache) Set(ctx context.Context, key string, data interface{}, refreshInterval time.Duration, source string) error {
	entry, err := newEntry(key, data, refreshInterval, source, c.now())
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry
	return nil
}

// GetWithMetadata retrieves data and cache metadata
func (c *Cache) GetWithMetadata(ctx context.Context, key string, result interface{}) (*CacheEntry, bool, error) {
	c.mutex.RLock()
	entry, exists := c.entries[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, false, nil
	}

	// Return metadata even if stale (caller decides how to handle)
	if result != nil {
		if err := json.Unmarshal(entry.Data, result); err != nil {
			return entry, exists, fmt.Errorf("failed to unmarshal cached data: %w", err)
		}
	}

	return entry, exists, nil
}

// Delete removes an entry from cache
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, key)
	return nil
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := c.now()
	stats := CacheStats{
		TotalEntries: len(c.entries),
	}

	for _, entry := range c.entries {
		if entry.IsStale(now) {
			stats.StaleEntries++
		} else {
			stats.FreshEntries++
		}

		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
		if entry.CreatedAt.After(stats.NewestEntry) {
			stats.NewestEntry = entry.CreatedAt
		}
	}

	return stats
}

// CleanupStale removes entries that are too old to serve even as a fallback
func (c *Cache) CleanupStale() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	var removed int

	for key, entry := range c.entries {
		if entry.IsVeryStale(now) {
			delete(c.entries, key)
			removed++
		}
	}

	return removed
}

// ReportMetrics publishes the current entry counts as gauges
func (c *Cache) ReportMetrics() CacheStats {
	stats := c.Stats()
	metrics.CacheEntries.WithLabelValues("fresh").Set(float64(stats.FreshEntries))
	metrics.CacheEntries.WithLabelValues("stale").Set(float64(stats.StaleEntries))
	if !stats.OldestEntry.IsZero() {
		metrics.CacheOldestEntryAge.Set(c.now().Sub(stats.OldestEntry).Seconds())
	} else {
		metrics.CacheOldestEntryAge.Set(0)
	}
	return stats
}

// StartPeriodicCleanup starts a goroutine that periodically cleans up stale
// entries and refreshes the cache gauges
func (c *Cache) StartPeriodicCleanup(ctx context.Context, interval time.Duration) {
	ctx = logging.EnsureLogger(ctx)
	go func() {
		defer func() {
			// Recover from any panics in the cache cleanup goroutine
			if r := recover(); r != nil {
				err, _ := errors.ParseStack(debug.Stack())
				skipFrames := 3
				numFrames := 5
				logging.Errorw(ctx, "Cache cleanup: recovered from panic",
					"error", r, "error.stack_trace", err.MinimalStack(skipFrames, numFrames))
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := c.CleanupStale(); removed > 0 {
					logging.Infow(ctx, "Cache cleanup: removed very stale entries", "removed", removed)
				}
				c.ReportMetrics()
			}
		}
	}()
}

// CacheStats provides cache usage statistics
type CacheStats struct {
	TotalEntries int
	FreshEntries int
	StaleEntries int
	OldestEntry  time.Time
	NewestEntry  time.Time
}
