package event

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/feidao/event"

// Binder registers listeners on targets and emits events to them.
// A Binder is safe for concurrent use.
type Binder struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *metrics
}

// NewBinder creates a Binder.
func NewBinder(opts ...BinderOption) *Binder {
	o := newBinderOptions(opts...)
	b := &Binder{logger: o.logger}
	if o.tracingEnabled {
		b.tracer = o.tracerProvider.Tracer(instrumentationName)
	} else {
		b.tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	if o.metricsEnabled {
		b.metrics = newMetrics(o.meterProvider.Meter(instrumentationName))
	} else {
		b.metrics = newMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	}
	return b
}

var defaultBinder atomic.Pointer[Binder]

func init() {
	defaultBinder.Store(NewBinder())
}

// Default returns the Binder used by the package-level functions.
func Default() *Binder {
	return defaultBinder.Load()
}

// SetDefault replaces the Binder used by the package-level functions.
func SetDefault(b *Binder) {
	if b != nil {
		defaultBinder.Store(b)
	}
}

// On registers listener for events of type typ on target.
//
// The target is a DOMTarget, an EmitterTarget, an EventedTarget or a Target
// returned by Classify. Anything else fails with ErrUnsupportedTarget.
func (b *Binder) On(target any, typ string, listener Listener, opts ...ListenOption) (Handle, error) {
	return b.bind(target, []string{typ}, listener, nil, opts)
}

// OnAll registers listener for each type in order and returns one Handle
// that removes all of them in the same order.
//
// If a registration fails, the ones already made are removed.
func (b *Binder) OnAll(target any, types []string, listener Listener, opts ...ListenOption) (Handle, error) {
	return b.bind(target, types, listener, nil, opts)
}

// gate decides whether an arriving event reaches the listener. Wrappers such
// as Once, Pausable and Throttle use it to drop events.
type gate func(Event) bool

func (b *Binder) bind(target any, types []string, listener Listener, g gate, opts []ListenOption) (Handle, error) {
	t, err := Classify(target)
	if err != nil || t.kind == KindUnknown {
		return nil, &TargetError{Op: "on", Target: target, Err: ErrUnsupportedTarget}
	}
	lo := newListenOptions(opts...)

	if len(types) == 1 {
		return b.listen(t, types[0], listener, g, lo)
	}

	handles := make([]Handle, 0, len(types))
	for _, typ := range types {
		h, err := b.listen(t, typ, listener, g, lo)
		if err != nil {
			if rerr := NewCompositeHandle(handles...).Destroy(); rerr != nil {
				b.logger.Warn("rollback failed", "event", typ, "error", rerr)
			}
			return nil, err
		}
		handles = append(handles, h)
	}
	return NewCompositeHandle(handles...), nil
}

// listen registers a single type on a classified target
func (b *Binder) listen(t Target, typ string, listener Listener, g gate, lo listenOptions) (Handle, error) {
	l := b.observe(typ, t.kind, listener, g)

	switch t.kind {
	case KindDOM:
		cb := NewCallback(l)
		t.dom.AddEventListener(typ, cb, lo.capture)
		b.registered(typ, t.kind)
		return NewHandle(func() error {
			t.dom.RemoveEventListener(typ, cb, lo.capture)
			b.released(typ, t.kind)
			return nil
		}), nil

	case KindEmitter:
		cb := NewCallback(l)
		if err := t.emitter.On(typ, cb); err != nil {
			return nil, fmt.Errorf("event: listen %q: %w", typ, err)
		}
		b.registered(typ, t.kind)
		return NewHandle(func() error {
			b.released(typ, t.kind)
			return t.emitter.RemoveListener(typ, cb)
		}), nil

	case KindEvented:
		h, err := t.evented.On(typ, l)
		if err != nil {
			return nil, fmt.Errorf("event: listen %q: %w", typ, err)
		}
		b.registered(typ, t.kind)
		return NewHandle(func() error {
			b.released(typ, t.kind)
			return h.Destroy()
		}), nil
	}

	return nil, &TargetError{Op: "on", Target: t.value, Err: ErrUnsupportedTarget}
}

// observe counts deliveries that pass g and reach listener
func (b *Binder) observe(typ string, kind Kind, listener Listener, g gate) Listener {
	return func(ev Event) {
		if g != nil && !g(ev) {
			return
		}
		b.metrics.Delivered(typ, kind)
		listener(ev)
	}
}

func (b *Binder) registered(typ string, kind Kind) {
	b.metrics.Registered(typ, kind)
	b.logger.Debug("listener registered", "event", typ, "kind", kind)
}

func (b *Binder) released(typ string, kind Kind) {
	b.metrics.Released(typ, kind)
	b.logger.Debug("listener released", "event", typ, "kind", kind)
}

// On registers listener using the default Binder.
func On(target any, typ string, listener Listener, opts ...ListenOption) (Handle, error) {
	return Default().On(target, typ, listener, opts...)
}

// OnAll registers listener for several types using the default Binder.
func OnAll(target any, types []string, listener Listener, opts ...ListenOption) (Handle, error) {
	return Default().OnAll(target, types, listener, opts...)
}
