package redis

import (
	"log/slog"
	"time"

	"github.com/feidao/event/payload"
)

// Option configures the Redis emitter
type Option func(*Emitter)

// WithCodec sets the codec for event serialization
func WithCodec(c payload.Codec) Option {
	return func(e *Emitter) {
		if c != nil {
			e.codec = c
		}
	}
}

// WithPrefix sets the channel prefix. The channel for an event type is
// prefix + type.
func WithPrefix(prefix string) Option {
	return func(e *Emitter) {
		e.prefix = prefix
	}
}

// WithSource sets the source recorded in every published envelope.
// Defaults to a random ID per emitter.
func WithSource(source string) Option {
	return func(e *Emitter) {
		if source != "" {
			e.source = source
		}
	}
}

// WithTimeout bounds each Publish and Subscribe round trip.
func WithTimeout(d time.Duration) Option {
	return func(e *Emitter) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Emitter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithErrorHandler sets the error handler callback.
// It receives publish failures and messages that could not be decoded.
func WithErrorHandler(fn func(error)) Option {
	return func(e *Emitter) {
		if fn != nil {
			e.onError = fn
		}
	}
}
