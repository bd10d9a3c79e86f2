package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestBucket_Take(t *testing.T) {
	// Capacity 3, refill rate 1 per second
	b := newBucket(3, 1)

	// Should allow first 3 requests immediately
	for i := 0; i < 3; i++ {
		if !b.take() {
			t.Errorf("Take %d should succeed", i+1)
		}
	}

	// 4th request should be denied
	if b.take() {
		t.Error("4th take should fail")
	}

	// Wait a bit more than 1 second and try again
	time.Sleep(1100 * time.Millisecond)

	if !b.take() {
		t.Error("Take after refill should succeed")
	}
}

func TestBucket_Put(t *testing.T) {
	b := newBucket(2, 1)

	if !b.take() || !b.take() {
		t.Fatal("Initial takes should succeed")
	}
	if b.take() {
		t.Fatal("Bucket should be empty")
	}

	// Returning a token makes it available again
	b.put()
	if !b.take() {
		t.Error("Take after put should succeed")
	}
}

func TestLimiter_PerClient(t *testing.T) {
	// Global: 10 req/sec, per-client: 3 req/sec
	limiter := NewLimiter(10, 10, 3, 3)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("192.168.1.1") {
			t.Errorf("Request %d for 192.168.1.1 should be allowed", i+1)
		}
	}

	// 4th request from same client should be denied
	if limiter.Allow("192.168.1.1") {
		t.Error("4th request from same client should be denied")
	}

	// A different client still has its own budget
	for i := 0; i < 3; i++ {
		if !limiter.Allow("192.168.1.2") {
			t.Errorf("Request %d for 192.168.1.2 should be allowed", i+1)
		}
	}
}

func TestLimiter_GlobalLimit(t *testing.T) {
	// Global budget below the per-client budget
	limiter := NewLimiter(2, 2, 10, 10)

	if !limiter.Allow("192.168.1.1") {
		t.Error("First request should be allowed")
	}
	if !limiter.Allow("192.168.1.2") {
		t.Error("Second request should be allowed")
	}

	// Global budget exhausted regardless of client
	if limiter.Allow("192.168.1.3") {
		t.Error("Third request should be denied by the global limit")
	}
}

func TestLimiter_GlobalTokenReturned(t *testing.T) {
	// Per-client budget of 1, roomy global budget
	limiter := NewLimiter(10, 10, 1, 1)

	if !limiter.Allow("192.168.1.1") {
		t.Fatal("First request should be allowed")
	}

	// Exhausting the client budget must not burn global tokens
	for i := 0; i < 5; i++ {
		limiter.Allow("192.168.1.1")
	}

	// Other clients should still have the full global budget available
	for i := 2; i <= 9; i++ {
		ip := "192.168.1." + string(rune('0'+i))
		if !limiter.Allow(ip) {
			t.Errorf("Request from %s should be allowed", ip)
		}
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(1, 5, 1, 5)

	// Drain the budget
	limiter.Allow("192.168.1.1")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := limiter.Wait(ctx, "192.168.1.1"); err != nil {
		t.Fatalf("Wait should succeed before the deadline: %v", err)
	}
	if time.Since(start) < 100*time.Millisecond {
		t.Error("Wait should have blocked until a token was refilled")
	}
}

func TestLimiter_Wait_ContextCancelled(t *testing.T) {
	limiter := NewLimiter(1, 1, 1, 1)
	limiter.Allow("192.168.1.1")

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "192.168.1.1"); err == nil {
		t.Error("Wait should fail when the context expires first")
	}
}
