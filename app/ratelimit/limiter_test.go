package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimitedFailsClosed(t *testing.T) {
	// Port 1 is never a Redis server, so the backing check cannot be
	// evaluated and the request must be treated as limited.
	limiter := NewRedisLimiter("127.0.0.1:1", "")
	defer limiter.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if !limiter.Limited(ctx, "sync:some-source", 10, time.Minute) {
		t.Error("Expected unavailable backing store to count as limited")
	}
}

func TestNewRedisLimiterAppliesPassword(t *testing.T) {
	limiter := NewRedisLimiter("127.0.0.1:1", "hunter2")
	defer limiter.Close()

	if got := limiter.client.Options().Password; got != "hunter2" {
		t.Errorf("Expected password to reach the client options, got %q", got)
	}
}

func TestLimitedZeroWindowDoesNotPanic(t *testing.T) {
	limiter := NewRedisLimiter("127.0.0.1:1", "")
	defer limiter.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Degenerate window falls back to one second; still fail-closed here.
	if !limiter.Limited(ctx, "sync:other", 1, 0) {
		t.Error("Expected limited result for zero window with unreachable store")
	}
}
