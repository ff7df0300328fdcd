package event

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Emit dispatches ev on target.
//
// For DOM targets a native event is created, initialized with the payload's
// type and init flags, given every payload field it does not already have and
// dispatched. The result reports whether a listener called PreventDefault.
// For emitter and Evented targets the result is always false.
//
// Returns ErrUnsupportedEmitTarget if the target cannot dispatch events.
func (b *Binder) Emit(target any, ev Event) (bool, error) {
	if ev == nil || ev.EventType() == "" {
		return false, ErrInvalidEvent
	}
	t, err := Classify(target)
	if err != nil || t.emitKind == KindUnknown {
		return false, &TargetError{Op: "emit", Target: target, Err: ErrUnsupportedEmitTarget}
	}

	typ := ev.EventType()
	ctx, span := b.tracer.Start(context.Background(), "event.emit",
		trace.WithAttributes(
			attribute.String(attrEventType, typ),
			attribute.String(attrTargetKind, t.emitKind.String()),
		),
		trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	var prevented bool
	switch t.emitKind {
	case KindDOM:
		prevented = dispatchNative(t.dispatcher, ev)
	case KindEmitter:
		err = t.emitter.Emit(typ, ev)
	case KindEvented:
		err = t.evented.Emit(ev)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	b.metrics.Emitted(ctx, typ, t.emitKind)
	span.SetAttributes(attribute.Bool("event.default_prevented", prevented))
	return prevented, nil
}

// dispatchNative synthesizes a native event from ev and dispatches it
func dispatchNative(d DOMDispatcher, ev Event) bool {
	native := d.CreateEvent()
	var bubbles, cancelable bool
	if init, ok := ev.(EventInitializer); ok {
		bubbles, cancelable = init.EventInit()
	}
	native.InitEvent(ev.EventType(), bubbles, cancelable)

	if fc, ok := ev.(FieldCarrier); ok {
		for k, v := range fc.Fields() {
			if !native.HasField(k) {
				native.SetField(k, v)
			}
		}
	}

	d.DispatchEvent(native)
	return native.DefaultPrevented()
}

// Emit dispatches ev on target using the default Binder.
func Emit(target any, ev Event) (bool, error) {
	return Default().Emit(target, ev)
}
