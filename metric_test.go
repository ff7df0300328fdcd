package event

import (
	"context"
	"sync/atomic"
	"testing"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/embedded"
)

type countingCounter struct {
	embedded.Int64Counter
	n atomic.Int64
}

func (c *countingCounter) Add(_ context.Context, incr int64, _ ...metric.AddOption) {
	c.n.Add(incr)
}

func (c *countingCounter) Enabled(context.Context) bool { return true }

// countingBinder returns a test binder whose delivery counter can be read
func countingBinder() (*Binder, *countingCounter) {
	b := TestBinder()
	c := &countingCounter{}
	b.metrics.delivered = c
	return b, c
}

func TestDeliveredCountsListenerCalls(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		b, c := countingBinder()
		ee := newFakeEmitter()
		h, _ := b.On(ee, "x", func(Event) {})
		defer h.Destroy()

		ee.Emit("x", NewObject("x", nil))
		ee.Emit("x", NewObject("x", nil))
		if got := c.n.Load(); got != 2 {
			t.Errorf("expected 2 deliveries, got %d", got)
		}
	})

	t.Run("paused", func(t *testing.T) {
		b, c := countingBinder()
		ee := newFakeEmitter()
		h, _ := b.Pausable(ee, "x", func(Event) {})
		defer h.Destroy()

		h.Pause()
		ee.Emit("x", NewObject("x", nil))
		h.Resume()
		ee.Emit("x", NewObject("x", nil))
		if got := c.n.Load(); got != 1 {
			t.Errorf("expected paused events not to count, got %d", got)
		}
	})

	t.Run("throttled", func(t *testing.T) {
		b, c := countingBinder()
		ee := newFakeEmitter()
		h, _ := b.Throttle(ee, "x", func(Event) {}, 0, 1)
		defer h.Destroy()

		for i := 0; i < 4; i++ {
			ee.Emit("x", NewObject("x", nil))
		}
		if got := c.n.Load(); got != 1 {
			t.Errorf("expected throttled events not to count, got %d", got)
		}
	})

	t.Run("once", func(t *testing.T) {
		b, c := countingBinder()
		ee := newFakeEmitter()
		_, _ = b.Once(ee, "x", func(Event) {})

		ee.Emit("x", NewObject("x", nil))
		ee.Emit("x", NewObject("x", nil))
		if got := c.n.Load(); got != 1 {
			t.Errorf("expected 1 delivery, got %d", got)
		}
	})
}
