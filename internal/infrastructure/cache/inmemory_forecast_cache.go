package cache

import (
	"context"
	"sync"
	"time"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/domain/shared"
)

type memoryEntry struct {
	record    *prediction.ForecastRecord
	expiresAt time.Time
}

// MemoryForecastCache implements prediction.ForecastCache with a plain map.
// It is the default tier for development and single-instance deployments
// where redis is not configured. Expired entries are dropped lazily on Get.
type MemoryForecastCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   shared.Clock
}

// MemoryForecastCacheOption is a functional option for configuring the cache
type MemoryForecastCacheOption func(*MemoryForecastCache)

// WithMemoryCacheClock overrides the expiry clock, for tests.
func WithMemoryCacheClock(clock shared.Clock) MemoryForecastCacheOption {
	return func(c *MemoryForecastCache) {
		c.clock = clock
	}
}

// NewMemoryForecastCache creates an in-memory forecast cache.
func NewMemoryForecastCache(opts ...MemoryForecastCacheOption) *MemoryForecastCache {
	c := &MemoryForecastCache{
		entries: make(map[string]memoryEntry),
		clock:   shared.SystemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a forecast record. A miss or an expired entry is (nil, nil).
func (c *MemoryForecastCache) Get(_ context.Context, key prediction.ForecastKey) (*prediction.ForecastRecord, error) {
	c.mu.RLock()
	entry, ok := c.entries[key.String()]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if c.clock.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key.String())
		c.mu.Unlock()
		return nil, nil
	}
	return entry.record, nil
}

// Set stores a forecast record with the given ttl.
func (c *MemoryForecastCache) Set(_ context.Context, key prediction.ForecastKey, record *prediction.ForecastRecord, ttl time.Duration) error {
	if record == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = prediction.DefaultStalenessWindow
	}

	c.mu.Lock()
	c.entries[key.String()] = memoryEntry{
		record:    record,
		expiresAt: c.clock.Now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

// Delete removes a forecast record.
func (c *MemoryForecastCache) Delete(_ context.Context, key prediction.ForecastKey) error {
	c.mu.Lock()
	delete(c.entries, key.String())
	c.mu.Unlock()
	return nil
}

// Close drops all entries.
func (c *MemoryForecastCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}
