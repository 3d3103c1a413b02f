package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/flightlookup/internal/models"
)

// RedisCache shares lookups between replicas. Redis expires keys on its own;
// the stored timestamp is still checked so a read never outlives the TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      DefaultTTL,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	return newRedisCache(client, cfg.TTL), nil
}

func newRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (models.LookupResult, bool) {
	data, err := c.client.Get(ctx, storageKey(key)).Bytes()
	if err != nil {
		return models.LookupResult{}, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return models.LookupResult{}, false
	}
	if entry.Expired(c.now(), c.ttl) {
		return models.LookupResult{}, false
	}

	return entry.Result, true
}

func (c *RedisCache) Set(ctx context.Context, key string, result models.LookupResult) error {
	data, err := json.Marshal(Entry{
		InsertedAt: c.now(),
		Query:      result.Query,
		Result:     result,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	return c.client.Set(ctx, storageKey(key), data, c.ttl).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	err := c.client.Ping(ctx).Err()
	if errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("redis client closed: %w", err)
	}
	return err
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
