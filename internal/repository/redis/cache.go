package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/locateflow/locateflow/internal/config"
	"github.com/locateflow/locateflow/internal/domain"
)

// Cache provides Redis caching functionality
type Cache struct {
	client *redis.Client
}

// Key prefixes for different cache types
const (
	PrefixInspection = "inspection:"
	PrefixPage       = "page:"
	PrefixRateLimit  = "ratelimit:"
)

// Default TTLs
const (
	DefaultTTL      = 15 * time.Minute
	PageTTL         = 5 * time.Minute
	RateLimitWindow = 1 * time.Minute
)

// New creates a new Redis cache client
func New(cfg config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Health checks Redis connectivity
func (c *Cache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Client returns the underlying Redis client for advanced operations
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Inspection caching methods

// GetInspection retrieves a cached inspection record
func (c *Cache) GetInspection(ctx context.Context, id uuid.UUID) (*domain.InspectionRecord, error) {
	key := PrefixInspection + id.String()
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var rec domain.InspectionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

// SetInspection caches an inspection record
func (c *Cache) SetInspection(ctx context.Context, rec *domain.InspectionRecord) error {
	key := PrefixInspection + rec.ID.String()
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, DefaultTTL).Err()
}

// InvalidateInspection removes an inspection record from cache
func (c *Cache) InvalidateInspection(ctx context.Context, id uuid.UUID) error {
	key := PrefixInspection + id.String()
	return c.client.Del(ctx, key).Err()
}

// Captured page caching

// PageKey derives the cache key for a captured page URL
func PageKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return PrefixPage + hex.EncodeToString(sum[:])
}

// GetPage retrieves cached page markup
func (c *Cache) GetPage(ctx context.Context, url string) ([]byte, error) {
	data, err := c.client.Get(ctx, PageKey(url)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// SetPage caches page markup
func (c *Cache) SetPage(ctx context.Context, url string, markup []byte) error {
	return c.client.Set(ctx, PageKey(url), markup, PageTTL).Err()
}

// InvalidatePage removes cached page markup
func (c *Cache) InvalidatePage(ctx context.Context, url string) error {
	return c.client.Del(ctx, PageKey(url)).Err()
}

// Rate limiting

// CheckRateLimit checks and increments rate limit counter
func (c *Cache) CheckRateLimit(ctx context.Context, key string, limit int) (bool, int, error) {
	fullKey := PrefixRateLimit + key

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, RateLimitWindow)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, err
	}

	count := int(incr.Val())
	return count <= limit, count, nil
}

// GetRateLimitRemaining returns remaining rate limit
func (c *Cache) GetRateLimitRemaining(ctx context.Context, key string, limit int) (int, error) {
	fullKey := PrefixRateLimit + key
	count, err := c.client.Get(ctx, fullKey).Int()
	if err != nil {
		if err == redis.Nil {
			return limit, nil
		}
		return 0, err
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

// Generic caching methods

// Get retrieves a value from cache
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Set stores a value in cache
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a value from cache
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeletePattern removes all keys matching a pattern
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}

	return nil
}
