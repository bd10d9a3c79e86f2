package backend

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis creates a mini redis server for testing
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisBackend) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	b := &RedisBackend{
		client: client,
	}

	return mr, b
}

func TestRedisBackend_NewRedisBackend_Success(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	redisURL := "redis://" + mr.Addr()
	b, err := NewRedisBackend(redisURL)

	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestRedisBackend_NewRedisBackend_InvalidURL(t *testing.T) {
	b, err := NewRedisBackend("invalid://url::")

	assert.Error(t, err)
	assert.Nil(t, b)
	assert.Contains(t, err.Error(), "failed to parse redis URL")
}

func TestRedisBackend_NewRedisBackend_ConnectionFailed(t *testing.T) {
	// Use invalid address that won't connect
	b, err := NewRedisBackend("redis://localhost:99999")

	assert.Error(t, err)
	assert.Nil(t, b)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestRedisBackend_SaveAndFetch_String(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	err := b.Save(ctx, "test-key", "test-value", 1*time.Hour)
	require.NoError(t, err)

	value, found, err := b.Fetch(ctx, "test-key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "test-value", value)
}

func TestRedisBackend_SaveAndFetch_Mapping(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	original := map[string]interface{}{"name": "test", "count": 42}

	err := b.Save(ctx, "map-key", original, 1*time.Hour)
	require.NoError(t, err)

	value, found, err := b.Fetch(ctx, "map-key")
	require.NoError(t, err)
	assert.True(t, found)

	// JSON round-trip turns numbers into float64
	retrieved, ok := value.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "test", retrieved["name"])
	assert.Equal(t, float64(42), retrieved["count"])
}

func TestRedisBackend_Fetch_NotFound(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	value, found, err := b.Fetch(ctx, "non-existent")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
}

func TestRedisBackend_Save_ZeroLifetime(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	err := b.Save(ctx, "permanent-key", "permanent-value", 0)
	require.NoError(t, err)

	// No TTL set on the key
	assert.Equal(t, time.Duration(0), mr.TTL("permanent-key"))

	value, found, err := b.Fetch(ctx, "permanent-key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "permanent-value", value)
}

func TestRedisBackend_Save_MarshalError(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	// Channels cannot be marshaled to JSON
	invalidValue := make(chan int)

	err := b.Save(ctx, "test-key", invalidValue, 1*time.Hour)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal value")
}

func TestRedisBackend_Delete(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	err := b.Save(ctx, "test-key", "test-value", 1*time.Hour)
	require.NoError(t, err)

	removed, err := b.Delete(ctx, "test-key")
	require.NoError(t, err)
	assert.True(t, removed)

	_, found, err := b.Fetch(ctx, "test-key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisBackend_Delete_NonExistent(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	removed, err := b.Delete(ctx, "non-existent")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRedisBackend_Contains(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	found, err := b.Contains(ctx, "test-key")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, b.Save(ctx, "test-key", true, 1*time.Hour))

	found, err = b.Contains(ctx, "test-key")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRedisBackend_Flush(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "key-1", 1, 0))
	require.NoError(t, b.Save(ctx, "key-2", 2, 0))

	err := b.Flush(ctx)
	require.NoError(t, err)

	found, err := b.Contains(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = b.Contains(ctx, "key-2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisBackend_Lifetime_Expiration(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	err := b.Save(ctx, "expiring-key", "expiring-value", 1*time.Second)
	require.NoError(t, err)

	value, found, err := b.Fetch(ctx, "expiring-key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "expiring-value", value)

	// Fast-forward time in miniredis
	mr.FastForward(2 * time.Second)

	_, found, err = b.Fetch(ctx, "expiring-key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisBackend_Fetch_WithError(t *testing.T) {
	mr, b := setupMiniRedis(t)

	ctx := context.Background()

	// Close the miniredis server to force error
	mr.Close()

	_, _, err := b.Fetch(ctx, "test-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis get failed")
}

func TestRedisBackend_Save_WithError(t *testing.T) {
	mr, b := setupMiniRedis(t)

	ctx := context.Background()

	mr.Close()

	err := b.Save(ctx, "test-key", "test-value", 1*time.Hour)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis set failed")
}

func TestRedisBackend_Delete_WithError(t *testing.T) {
	mr, b := setupMiniRedis(t)

	ctx := context.Background()

	mr.Close()

	_, err := b.Delete(ctx, "test-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis delete failed")
}

func TestRedisBackend_Close(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()

	err := b.Close()
	assert.NoError(t, err)
}

func BenchmarkRedisBackend_Save(b *testing.B) {
	mr := miniredis.RunT(b)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	backend := &RedisBackend{
		client: client,
	}

	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = backend.Save(ctx, "bench-key", "bench-value", 1*time.Hour)
	}
}

func BenchmarkRedisBackend_Fetch(b *testing.B) {
	mr := miniredis.RunT(b)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	backend := &RedisBackend{
		client: client,
	}

	ctx := context.Background()

	_ = backend.Save(ctx, "bench-key", "bench-value", 1*time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = backend.Fetch(ctx, "bench-key")
	}
}
