package event

import (
	"context"

	"github.com/feidao/event/ratelimit"
	"golang.org/x/time/rate"
)

// Throttle registers a listener that receives at most limit events per second,
// with bursts of up to burst events. Events above the limit are dropped.
func (b *Binder) Throttle(target any, typ string, listener Listener, limit rate.Limit, burst int, opts ...ListenOption) (Handle, error) {
	return b.throttle(target, []string{typ}, listener, ratelimit.NewTokenBucket(limit, burst), opts)
}

// ThrottleAll is like Throttle for several types sharing one limiter.
func (b *Binder) ThrottleAll(target any, types []string, listener Listener, limit rate.Limit, burst int, opts ...ListenOption) (Handle, error) {
	return b.throttle(target, types, listener, ratelimit.NewTokenBucket(limit, burst), opts)
}

// ThrottleWith is like Throttle with a caller supplied limiter, such as a
// ratelimit.Window shared between processes.
func (b *Binder) ThrottleWith(target any, typ string, listener Listener, limiter ratelimit.Limiter, opts ...ListenOption) (Handle, error) {
	return b.throttle(target, []string{typ}, listener, limiter, opts)
}

func (b *Binder) throttle(target any, types []string, listener Listener, limiter ratelimit.Limiter, opts []ListenOption) (Handle, error) {
	if limiter == nil {
		return b.bind(target, types, listener, nil, opts)
	}
	return b.bind(target, types, listener, func(ev Event) bool {
		if !limiter.Allow(context.Background()) {
			b.logger.Debug("event throttled", "event", ev.EventType())
			return false
		}
		return true
	}, opts)
}

// Throttle registers a rate limited listener using the default Binder.
func Throttle(target any, typ string, listener Listener, limit rate.Limit, burst int, opts ...ListenOption) (Handle, error) {
	return Default().Throttle(target, typ, listener, limit, burst, opts...)
}

// ThrottleAll registers a rate limited listener for several types using the default Binder.
func ThrottleAll(target any, types []string, listener Listener, limit rate.Limit, burst int, opts ...ListenOption) (Handle, error) {
	return Default().ThrottleAll(target, types, listener, limit, burst, opts...)
}

// ThrottleWith registers a listener limited by limiter using the default Binder.
func ThrottleWith(target any, typ string, listener Listener, limiter ratelimit.Limiter, opts ...ListenOption) (Handle, error) {
	return Default().ThrottleWith(target, typ, listener, limiter, opts...)
}
