package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"aquahope-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// StatsCache is a small read-through cache for expensive aggregate queries.
// It is optional: a nil *StatsCache is valid and every method degrades to a
// miss, so the platform runs fine without Redis.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a stats cache, or nil when no Redis address is configured
func New(cfg *config.Config) *StatsCache {
	if cfg.Redis.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unreachable, stats cache disabled: %v", err)
		return nil
	}

	log.Printf("✅ Stats cache connected: %s", cfg.Redis.Addr)
	return &StatsCache{
		client: client,
		ttl:    time.Duration(cfg.Redis.StatsTTLSecs) * time.Second,
	}
}

// Get loads a cached value into dest, reporting whether it was present
func (c *StatsCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Set stores a value under the cache TTL; failures only cost a later miss
func (c *StatsCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Printf("⚠️ Stats cache set failed for %s: %v", key, err)
	}
}

// Invalidate drops a cached key
func (c *StatsCache) Invalidate(ctx context.Context, key string) {
	if c == nil {
		return
	}
	c.client.Del(ctx, key)
}

// Close releases the Redis connection
func (c *StatsCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
