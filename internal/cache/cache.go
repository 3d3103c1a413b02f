package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/dharmasatrya/flightlookup/internal/models"
)

const DefaultTTL = 30 * time.Minute

// Cache stores route lookups by RouteQuery.Key(). Get never returns an entry
// older than the TTL.
type Cache interface {
	Get(ctx context.Context, key string) (models.LookupResult, bool)
	Set(ctx context.Context, key string, result models.LookupResult) error
	Close() error
}

type Entry struct {
	InsertedAt time.Time           `json:"inserted_at"`
	Query      models.RouteQuery   `json:"query"`
	Result     models.LookupResult `json:"result"`
}

func (e Entry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.InsertedAt) > ttl
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key string) (models.LookupResult, bool) {
	return models.LookupResult{}, false
}

func (c *NoOpCache) Set(ctx context.Context, key string, result models.LookupResult) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

func storageKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return "flight:route:" + hex.EncodeToString(hash[:])
}
