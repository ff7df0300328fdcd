package event

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// binderOptions holds configuration for a Binder (unexported)
type binderOptions struct {
	logger         *slog.Logger
	tracingEnabled bool
	metricsEnabled bool
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// BinderOption option function for binder configuration
type BinderOption func(*binderOptions)

// WithLogger sets a custom logger for the binder
func WithLogger(l *slog.Logger) BinderOption {
	return func(o *binderOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracing enables/disables spans around Emit
func WithTracing(enabled bool) BinderOption {
	return func(o *binderOptions) {
		o.tracingEnabled = enabled
	}
}

// WithMetrics enables/disables listener metrics
func WithMetrics(enabled bool) BinderOption {
	return func(o *binderOptions) {
		o.metricsEnabled = enabled
	}
}

// WithTracerProvider sets the tracer provider. Default is otel.GetTracerProvider().
func WithTracerProvider(tp trace.TracerProvider) BinderOption {
	return func(o *binderOptions) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the meter provider. Default is otel.GetMeterProvider().
func WithMeterProvider(mp metric.MeterProvider) BinderOption {
	return func(o *binderOptions) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// newBinderOptions creates options with defaults and applies provided options
func newBinderOptions(opts ...BinderOption) *binderOptions {
	o := &binderOptions{
		logger:         Logger("event>binder"),
		tracingEnabled: true,
		metricsEnabled: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	return o
}

// listenOptions holds per-registration configuration (unexported)
type listenOptions struct {
	capture bool
}

// ListenOption configures a single registration
type ListenOption func(*listenOptions)

// WithCapture registers the listener for the capture phase.
// Only DOM targets use it.
func WithCapture() ListenOption {
	return func(o *listenOptions) {
		o.capture = true
	}
}

func newListenOptions(opts ...ListenOption) listenOptions {
	var o listenOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
