// Package redis implements Redis caching for the admissions portal.
// PostgreSQL stays the source of truth; Redis only holds derived,
// re-creatable data: per-user unread counters and hot catalog listings.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss is returned when the requested key is absent.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCacheConnection is returned when Redis cannot be reached.
	ErrCacheConnection = errors.New("cache: connection failed")

	// ErrCacheSerialization is returned when a cached value cannot be
	// encoded or decoded.
	ErrCacheSerialization = errors.New("cache: serialization failed")
)

// Key prefixes namespace everything this service writes.
const (
	PrefixUnread  = "unread:"
	PrefixCatalog = "catalog:"
)

const (
	// TTLUnreadCount bounds staleness of unread counters; event-driven
	// invalidation usually refreshes them much sooner.
	TTLUnreadCount = 10 * time.Minute

	// TTLCatalog can be long since the catalog changes rarely.
	TTLCatalog = 30 * time.Minute
)

// Config holds Redis connection settings.
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns settings for a local unauthenticated Redis.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Cache is a thin typed layer over one Redis client: JSON values,
// integer counters, TTLs, and miss detection.
type Cache struct {
	client *redis.Client
}

// NewCache connects with the given settings and verifies the connection.
func NewCache(cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	return &Cache{client: client}, nil
}

// NewCacheFromClient wraps an already-configured Redis client.
func NewCacheFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping checks that Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Set stores a value as JSON under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the JSON value at key into dest, or ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	return nil
}

// SetInt stores a counter with the given TTL.
func (c *Cache) SetInt(ctx context.Context, key string, value int, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// GetInt reads a counter, or ErrCacheMiss.
func (c *Cache) GetInt(ctx context.Context, key string) (int, error) {
	val, err := c.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

// Delete removes keys. Deleting absent keys is not an error.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
