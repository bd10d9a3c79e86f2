package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend implements Backend using Redis
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend creates a new Redis-based storage backend
func NewRedisBackend(redisURL string) (Backend, error) {
	return newRedisBackend(redisURL)
}

// newRedisBackend creates the concrete implementation
func newRedisBackend(redisURL string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBackend{
		client: client,
	}, nil
}

// Fetch retrieves a stored value for the given key. Values round-trip through
// JSON, so numbers come back as float64 and mappings as map[string]interface{}.
func (r *RedisBackend) Fetch(ctx context.Context, key string) (interface{}, bool, error) {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var value interface{}
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal stored value: %w", err)
	}

	return value, true, nil
}

// Save stores a value in Redis. A zero lifetime stores the entry without
// expiration.
func (r *RedisBackend) Save(ctx context.Context, key string, value interface{}, lifetime time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := r.client.Set(ctx, key, data, lifetime).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Delete removes an entry and reports whether it existed
func (r *RedisBackend) Delete(ctx context.Context, key string) (bool, error) {
	removed, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis delete failed: %w", err)
	}
	return removed > 0, nil
}

// Flush removes every entry from the current Redis database
func (r *RedisBackend) Flush(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("redis flush failed: %w", err)
	}
	return nil
}

// Contains reports whether an entry exists for the given key
func (r *RedisBackend) Contains(ctx context.Context, key string) (bool, error) {
	count, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return count > 0, nil
}

// Close closes the Redis connection
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
