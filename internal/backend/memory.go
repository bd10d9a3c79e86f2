package backend

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend implements Backend using in-process storage
type MemoryBackend struct {
	data  map[string]*memoryEntry
	mutex sync.RWMutex
}

// memoryEntry represents a single stored value with optional expiration
type memoryEntry struct {
	value     interface{}
	expiresAt time.Time // zero value means the entry never expires
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemoryBackend creates a new in-memory storage backend
func NewMemoryBackend() Backend {
	return newMemoryBackend()
}

// newMemoryBackend creates the concrete implementation
func newMemoryBackend() *MemoryBackend {
	b := &MemoryBackend{
		data: make(map[string]*memoryEntry),
	}

	// Start cleanup routine
	go b.cleanupExpired()

	return b
}

// Fetch retrieves a stored value for the given key
func (m *MemoryBackend) Fetch(ctx context.Context, key string) (interface{}, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entry, exists := m.data[key]
	if !exists || entry.expired(time.Now()) {
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Save stores a value under the given key. A zero lifetime keeps the entry
// until it is deleted or flushed.
func (m *MemoryBackend) Save(ctx context.Context, key string, value interface{}, lifetime time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry := &memoryEntry{value: value}
	if lifetime > 0 {
		entry.expiresAt = time.Now().Add(lifetime)
	}
	m.data[key] = entry

	return nil
}

// Delete removes an entry and reports whether it existed
func (m *MemoryBackend) Delete(ctx context.Context, key string) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry, exists := m.data[key]
	if !exists {
		return false, nil
	}
	delete(m.data, key)

	// An expired entry still occupying the map counts as absent
	if entry.expired(time.Now()) {
		return false, nil
	}

	return true, nil
}

// Flush removes every entry from the backend
func (m *MemoryBackend) Flush(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.data = make(map[string]*memoryEntry)
	return nil
}

// Contains reports whether a live entry exists for the given key
func (m *MemoryBackend) Contains(ctx context.Context, key string) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entry, exists := m.data[key]
	if !exists || entry.expired(time.Now()) {
		return false, nil
	}

	return true, nil
}

// cleanupExpired removes expired entries from the backend
func (m *MemoryBackend) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute) // Cleanup every 5 minutes
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		m.mutex.Lock()
		for key, entry := range m.data {
			if entry.expired(now) {
				delete(m.data, key)
			}
		}
		m.mutex.Unlock()
	}
}

// Size returns the current number of stored entries (for monitoring)
func (m *MemoryBackend) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.data)
}
