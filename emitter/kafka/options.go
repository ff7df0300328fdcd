package kafka

import (
	"log/slog"

	"github.com/feidao/event/payload"
)

// Option configures the Kafka emitter
type Option func(*Emitter)

// WithCodec sets the codec for event serialization
func WithCodec(c payload.Codec) Option {
	return func(e *Emitter) {
		if c != nil {
			e.codec = c
		}
	}
}

// WithPrefix sets the topic prefix. The topic for an event type is
// prefix + type.
func WithPrefix(prefix string) Option {
	return func(e *Emitter) {
		e.prefix = prefix
	}
}

// WithPartition sets the partition consumed for every topic.
func WithPartition(p int32) Option {
	return func(e *Emitter) {
		if p >= 0 {
			e.partition = p
		}
	}
}

// WithSource sets the source recorded in every produced envelope.
func WithSource(source string) Option {
	return func(e *Emitter) {
		if source != "" {
			e.source = source
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
