package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dharmasatrya/flightlookup/internal/models"
)

// MemoryCache is a process-local TTL cache. Expired entries are evicted
// lazily on read; there is no background sweep.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

type MemoryOption func(*MemoryCache)

func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

func NewMemoryCache(ttl time.Duration, opts ...MemoryOption) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryCache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Get(ctx context.Context, key string) (models.LookupResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return models.LookupResult{}, false
	}
	if entry.Expired(c.now(), c.ttl) {
		delete(c.entries, key)
		return models.LookupResult{}, false
	}
	return detach(entry.Result), true
}

// Set overwrites any existing entry and refreshes its timestamp.
func (c *MemoryCache) Set(ctx context.Context, key string, result models.LookupResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{
		InsertedAt: c.now(),
		Query:      result.Query,
		Result:     detach(result),
	}
	return nil
}

// detach copies the flight list so callers never share it with the stored
// entry.
func detach(result models.LookupResult) models.LookupResult {
	if result.Flights != nil {
		result.Flights = append([]models.FlightCandidate(nil), result.Flights...)
	}
	return result
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
	return nil
}
