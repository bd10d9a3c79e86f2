package ratelimit

import (
	"context"
	"sync"
	"time"
)

// bucket is a token bucket refilled continuously at rate tokens per second
type bucket struct {
	capacity int64
	tokens   float64
	rate     float64
	lastSeen time.Time
	mutex    sync.Mutex
}

func newBucket(capacity, rate int64) *bucket {
	return &bucket{
		capacity: capacity,
		tokens:   float64(capacity), // start full
		rate:     float64(rate),
		lastSeen: time.Now(),
	}
}

// take consumes one token if available
func (b *bucket) take() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.refill()

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// put returns a token, compensating for a take that could not be used
func (b *bucket) put() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.tokens < float64(b.capacity) {
		b.tokens++
	}
}

// refill adds tokens for the time elapsed since the bucket was last touched
func (b *bucket) refill() {
	now := time.Now()
	b.tokens += now.Sub(b.lastSeen).Seconds() * b.rate
	if b.tokens > float64(b.capacity) {
		b.tokens = float64(b.capacity)
	}
	b.lastSeen = now
}

func (b *bucket) idleSince() time.Time {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.lastSeen
}

// Limiter applies a global request budget and a per-client budget on top of
// it. A request passes only when both buckets have a token; a request that
// clears the global bucket but not its client bucket returns the global
// token so other clients are not penalized.
type Limiter struct {
	global         *bucket
	clients        map[string]*bucket
	clientCapacity int64
	clientRate     int64
	mutex          sync.Mutex
}

// NewLimiter creates a new two-tier rate limiter
func NewLimiter(globalCapacity, globalRate, clientCapacity, clientRate int64) *Limiter {
	l := &Limiter{
		global:         newBucket(globalCapacity, globalRate),
		clients:        make(map[string]*bucket),
		clientCapacity: clientCapacity,
		clientRate:     clientRate,
	}

	// Start cleanup routine for idle client buckets
	go l.cleanupClients()

	return l
}

// Allow checks both the global and the per-client rate limits
func (l *Limiter) Allow(clientIP string) bool {
	if !l.global.take() {
		return false
	}

	if !l.clientBucket(clientIP).take() {
		l.global.put()
		return false
	}

	return true
}

// Wait blocks until a token becomes available for the given client
func (l *Limiter) Wait(ctx context.Context, clientIP string) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.Allow(clientIP) {
				return nil
			}
		}
	}
}

// clientBucket gets or creates the bucket for the given client
func (l *Limiter) clientBucket(clientIP string) *bucket {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	b, ok := l.clients[clientIP]
	if !ok {
		b = newBucket(l.clientCapacity, l.clientRate)
		l.clients[clientIP] = b
	}
	return b
}

// cleanupClients drops buckets of clients not seen for a while so the map
// does not grow without bound
func (l *Limiter) cleanupClients() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-30 * time.Minute)

		l.mutex.Lock()
		for clientIP, b := range l.clients {
			if b.idleSince().Before(cutoff) {
				delete(l.clients, clientIP)
			}
		}
		l.mutex.Unlock()
	}
}
