package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestTokenBucket(t *testing.T) {
	t.Run("NewTokenBucket creates limiter", func(t *testing.T) {
		limiter := NewTokenBucket(100, 10)

		if limiter.Limit() != 100 {
			t.Errorf("expected limit 100, got %f", limiter.Limit())
		}
		if limiter.Burst() != 10 {
			t.Errorf("expected burst 10, got %d", limiter.Burst())
		}
	})

	t.Run("Allow consumes burst", func(t *testing.T) {
		limiter := NewTokenBucket(0, 3)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			if !limiter.Allow(ctx) {
				t.Errorf("expected Allow to return true at iteration %d", i)
			}
		}
		if limiter.Allow(ctx) {
			t.Error("expected Allow to fail once the burst is used")
		}
	})

	t.Run("SetLimit and SetBurst", func(t *testing.T) {
		limiter := NewTokenBucket(1, 1)
		limiter.SetLimit(50)
		limiter.SetBurst(4)

		if limiter.Limit() != 50 || limiter.Burst() != 4 {
			t.Errorf("unexpected settings %v/%d", limiter.Limit(), limiter.Burst())
		}
	})
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestWindow(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()

	a := NewWindow(client, "orders", 3, time.Minute)
	b := NewWindow(client, "orders", 3, time.Minute)

	allowed := 0
	for i := 0; i < 5; i++ {
		lim := a
		if i%2 == 1 {
			lim = b
		}
		if lim.Allow(ctx) {
			allowed++
		}
	}
	if allowed != 3 {
		t.Errorf("expected the limit to be shared, got %d allowed", allowed)
	}

	remaining, err := a.Remaining(ctx)
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", remaining)
	}

	// a new window starts when the counter expires
	mr.FastForward(time.Minute + time.Second)
	if !a.Allow(ctx) {
		t.Error("expected a new window")
	}

	if err := a.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if remaining, _ := a.Remaining(ctx); remaining != 3 {
		t.Errorf("expected full window after Reset, got %d", remaining)
	}
}

func TestWindowRedisDown(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()

	ctx := context.Background()
	if !NewWindow(client, "k", 1, time.Second).Allow(ctx) {
		t.Error("expected fail open by default")
	}
	if NewWindow(client, "k", 1, time.Second, WithFailClosed()).Allow(ctx) {
		t.Error("expected fail closed")
	}
}
