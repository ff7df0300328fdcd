// Package ratelimit provides the limiters behind event.ThrottleWith.
//
// TokenBucket limits deliveries inside one process. Window shares one limit
// between processes through a Redis counter, so several instances consuming
// the same event type from a remote emitter together stay under the limit.
//
//	// 10 deliveries per second in this process, bursts of 5
//	h, _ := event.ThrottleWith(ee, "scroll", l, ratelimit.NewTokenBucket(10, 5))
//
//	// 100 deliveries per minute across every instance
//	lim := ratelimit.NewWindow(rdb, "orders", 100, time.Minute)
//	h, _ := event.ThrottleWith(ee, "order.created", l, lim)
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter decides whether one more event may be delivered right now.
//
// All implementations must be safe for concurrent use.
type Limiter interface {
	Allow(ctx context.Context) bool
}

// TokenBucket is an in-memory token bucket built on golang.org/x/time/rate.
//
// Tokens are added at limit per second and at most burst tokens accumulate.
// A zero limit never refills, so only the initial burst is allowed.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a token bucket with the given rate and burst.
func NewTokenBucket(limit rate.Limit, burst int) *TokenBucket {
	return &TokenBucket{limiter: rate.NewLimiter(limit, burst)}
}

// Allow consumes one token if available.
func (t *TokenBucket) Allow(ctx context.Context) bool {
	return t.limiter.Allow()
}

// SetLimit updates the refill rate.
func (t *TokenBucket) SetLimit(limit rate.Limit) {
	t.limiter.SetLimit(limit)
}

// SetBurst updates the burst size.
func (t *TokenBucket) SetBurst(burst int) {
	t.limiter.SetBurst(burst)
}

// Limit returns the refill rate in events per second.
func (t *TokenBucket) Limit() rate.Limit {
	return t.limiter.Limit()
}

// Burst returns the burst size.
func (t *TokenBucket) Burst() int {
	return t.limiter.Burst()
}

// Compile-time check
var _ Limiter = (*TokenBucket)(nil)
