package nats

import (
	"log/slog"
	"time"

	"github.com/feidao/event/payload"
)

// Option configures the NATS emitter
type Option func(*Emitter)

// WithCodec sets the codec for event serialization
func WithCodec(c payload.Codec) Option {
	return func(e *Emitter) {
		if c != nil {
			e.codec = c
		}
	}
}

// WithPrefix sets the subject prefix. The subject for an event type is
// prefix + type.
func WithPrefix(prefix string) Option {
	return func(e *Emitter) {
		e.prefix = prefix
	}
}

// WithQueue subscribes through a queue group, so each event is delivered to
// one member of the group instead of every subscriber.
func WithQueue(group string) Option {
	return func(e *Emitter) {
		e.queue = group
	}
}

// WithSource sets the source recorded in every published envelope.
func WithSource(source string) Option {
	return func(e *Emitter) {
		if source != "" {
			e.source = source
		}
	}
}

// WithTimeout bounds the flush that confirms a new subscription.
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

// WithErrorHandler sets the error handler callback
func WithErrorHandler(fn func(error)) Option {
	return func(e *Emitter) {
		if fn != nil {
			e.onError = fn
		}
	}
}
