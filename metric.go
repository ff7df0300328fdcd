package event

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	attrEventType  = "event.type"
	attrTargetKind = "event.target_kind"
)

// metrics holds the binder instruments
type metrics struct {
	active    metric.Int64UpDownCounter
	emitted   metric.Int64Counter
	delivered metric.Int64Counter
}

func newMetrics(meter metric.Meter) *metrics {
	m := &metrics{}
	var err error
	if m.active, err = meter.Int64UpDownCounter("event.listeners.active",
		metric.WithDescription("Number of registered listeners")); err != nil {
		m.active = noop.Int64UpDownCounter{}
	}
	if m.emitted, err = meter.Int64Counter("event.emitted",
		metric.WithDescription("Total number of events emitted")); err != nil {
		m.emitted = noop.Int64Counter{}
	}
	if m.delivered, err = meter.Int64Counter("event.delivered",
		metric.WithDescription("Total number of events delivered to listeners")); err != nil {
		m.delivered = noop.Int64Counter{}
	}
	return m
}

func attrs(typ string, kind Kind) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String(attrEventType, typ),
		attribute.String(attrTargetKind, kind.String()),
	)
}

// Registered a listener was added
func (m *metrics) Registered(typ string, kind Kind) {
	m.active.Add(context.Background(), 1, attrs(typ, kind))
}

// Released a listener was removed
func (m *metrics) Released(typ string, kind Kind) {
	m.active.Add(context.Background(), -1, attrs(typ, kind))
}

// Emitted an event was emitted
func (m *metrics) Emitted(ctx context.Context, typ string, kind Kind) {
	m.emitted.Add(ctx, 1, attrs(typ, kind))
}

// Delivered an event reached a listener
func (m *metrics) Delivered(typ string, kind Kind) {
	m.delivered.Add(context.Background(), 1, attrs(typ, kind))
}
