package ratelimiter

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisLuaLimiter(t *testing.T, buckets map[string]BucketConfig) (*RedisLuaLimiter, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRedisLuaLimiter(rdb, nil, buckets)

	cleanup := func() {
		_ = rdb.Close()
		mr.Close()
	}

	return limiter, cleanup
}

func TestAllow_NilLimiter_FailOpen(t *testing.T) {
	ctx := context.Background()
	var limiter *RedisLuaLimiter

	allowed, retryAfter, err := limiter.Allow(ctx, "submit", "1.2.3.4", 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed to be true for nil limiter")
	}
	if retryAfter != 0 {
		t.Fatalf("expected zero retryAfter, got %v", retryAfter)
	}
}

func TestAllow_NoBucketConfig_FailOpen(t *testing.T) {
	ctx := context.Background()
	limiter, cleanup := newTestRedisLuaLimiter(t, nil)
	defer cleanup()

	allowed, retryAfter, err := limiter.Allow(ctx, "unknown-bucket", "1.2.3.4", 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed to be true when no bucket config is present")
	}
	if retryAfter != 0 {
		t.Fatalf("expected zero retryAfter, got %v", retryAfter)
	}
}

func TestAllow_ExhaustsBucket(t *testing.T) {
	ctx := context.Background()
	limiter, cleanup := newTestRedisLuaLimiter(t, map[string]BucketConfig{
		"submit": {Capacity: 2, RefillRate: 0.1},
	})
	defer cleanup()

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, "submit", "1.2.3.4", 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "submit", "1.2.3.4", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("third request should be denied")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retryAfter, got %v", retryAfter)
	}
}

func TestAllow_BucketsAreScopedPerClient(t *testing.T) {
	ctx := context.Background()
	limiter, cleanup := newTestRedisLuaLimiter(t, map[string]BucketConfig{
		"submit": {Capacity: 1, RefillRate: 0.01},
	})
	defer cleanup()

	allowed, _, err := limiter.Allow(ctx, "submit", "1.1.1.1", 1)
	if err != nil || !allowed {
		t.Fatalf("first client first request should pass: allowed=%v err=%v", allowed, err)
	}
	allowed, _, _ = limiter.Allow(ctx, "submit", "1.1.1.1", 1)
	if allowed {
		t.Fatalf("first client second request should be denied")
	}

	// A different client still has a full bucket.
	allowed, _, err = limiter.Allow(ctx, "submit", "2.2.2.2", 1)
	if err != nil || !allowed {
		t.Fatalf("second client should pass: allowed=%v err=%v", allowed, err)
	}
}

func TestNewBucketConfigFromPerMinute(t *testing.T) {
	cfg := NewBucketConfigFromPerMinute(30)
	if cfg.Capacity != 30 {
		t.Fatalf("capacity: got %d", cfg.Capacity)
	}
	if cfg.RefillRate != 0.5 {
		t.Fatalf("refill rate: got %v", cfg.RefillRate)
	}
	if got := NewBucketConfigFromPerMinute(0); got.Capacity != 0 {
		t.Fatalf("zero per-minute should yield empty config")
	}
}

func TestSetBucketConfig(t *testing.T) {
	limiter, cleanup := newTestRedisLuaLimiter(t, nil)
	defer cleanup()

	limiter.SetBucketConfig("submit", BucketConfig{Capacity: 1, RefillRate: 0.001})
	allowed, _, err := limiter.Allow(context.Background(), "submit", "c1", 1)
	if err != nil || !allowed {
		t.Fatalf("first request should pass: allowed=%v err=%v", allowed, err)
	}
	allowed, retryAfter, _ := limiter.Allow(context.Background(), "submit", "c1", 1)
	if allowed {
		t.Fatalf("second request should be denied")
	}
	if retryAfter < time.Second {
		t.Fatalf("expected a long retryAfter, got %v", retryAfter)
	}
}
