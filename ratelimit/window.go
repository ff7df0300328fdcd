package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// windowScript increments the window counter, starting the window on the
// first hit, and reports whether the count is still within the limit.
var windowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
	return 0
end
return 1
`)

// DefaultWindowTimeout bounds each Redis round trip made by Allow.
var DefaultWindowTimeout = 100 * time.Millisecond

// Window is a fixed-window limiter shared through Redis.
//
// Up to limit events are allowed per window. The counter resets when the
// window expires, so twice the limit can pass around a window boundary.
type Window struct {
	client   redis.Cmdable
	key      string
	limit    int
	window   time.Duration
	timeout  time.Duration
	failOpen bool
	logger   *slog.Logger
}

// WindowOption configures a Window
type WindowOption func(*Window)

// WithFailClosed rejects events when Redis cannot be reached.
// By default a Redis error allows the event.
func WithFailClosed() WindowOption {
	return func(w *Window) {
		w.failOpen = false
	}
}

// WithTimeout bounds each Redis round trip.
func WithTimeout(d time.Duration) WindowOption {
	return func(w *Window) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) WindowOption {
	return func(w *Window) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWindow creates a Redis fixed-window limiter. Limiters created with the
// same key share their count.
func NewWindow(client redis.Cmdable, key string, limit int, window time.Duration, opts ...WindowOption) *Window {
	w := &Window{
		client:   client,
		key:      "throttle:" + key,
		limit:    limit,
		window:   window,
		timeout:  DefaultWindowTimeout,
		failOpen: true,
		logger:   slog.Default().With("component", "ratelimit>window"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Allow counts one event and reports whether it is within the limit.
func (w *Window) Allow(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	res, err := windowScript.Run(ctx, w.client, []string{w.key}, w.limit, w.window.Milliseconds()).Int()
	if err != nil {
		w.logger.Warn("rate limit check failed", "key", w.key, "fail_open", w.failOpen, "error", err)
		return w.failOpen
	}
	return res == 1
}

// Remaining returns how many events are left in the current window.
func (w *Window) Remaining(ctx context.Context) (int, error) {
	used, err := w.client.Get(ctx, w.key).Int()
	if errors.Is(err, redis.Nil) {
		return w.limit, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get: %w", err)
	}
	return max(w.limit-used, 0), nil
}

// Reset starts a new window.
func (w *Window) Reset(ctx context.Context) error {
	return w.client.Del(ctx, w.key).Err()
}

// Compile-time check
var _ Limiter = (*Window)(nil)
