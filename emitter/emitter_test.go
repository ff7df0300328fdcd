package emitter

import (
	"errors"
	"testing"
	"time"

	"github.com/feidao/event"
	"github.com/google/go-cmp/cmp"
	"syreclabs.com/go/faker"
)

func init() {
	faker.Seed(time.Now().UnixNano())
}

func TestEmitOrder(t *testing.T) {
	ee := New()
	var order []string
	rec := func(name string) *event.Callback {
		return event.NewCallback(func(event.Event) { order = append(order, name) })
	}

	if err := ee.On("data", rec("a")); err != nil {
		t.Fatal(err)
	}
	_ = ee.On("data", rec("b"))
	_ = ee.Prepend("data", rec("first"))

	if err := ee.Emit("data", event.NewObject("data", nil)); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if diff := cmp.Diff([]string{"first", "a", "b"}, order); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestOnce(t *testing.T) {
	ee := New()
	var calls int
	_ = ee.Once("x", event.NewCallback(func(event.Event) { calls++ }))

	_ = ee.Emit("x", event.NewObject("x", nil))
	_ = ee.Emit("x", event.NewObject("x", nil))
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if ee.ListenerCount("x") != 0 {
		t.Errorf("expected once listener to be removed")
	}
}

func TestRemoveListener(t *testing.T) {
	ee := New()
	var calls int
	cb := event.NewCallback(func(event.Event) { calls++ })

	_ = ee.On("x", cb)
	_ = ee.On("x", cb)
	if ee.ListenerCount("x") != 2 {
		t.Fatalf("expected duplicate registrations, got %d", ee.ListenerCount("x"))
	}

	_ = ee.RemoveListener("x", cb)
	_ = ee.Emit("x", event.NewObject("x", nil))
	if calls != 1 {
		t.Errorf("expected 1 call after removing one registration, got %d", calls)
	}

	if err := ee.RemoveListener("x", event.NewCallback(nil)); err != nil {
		t.Errorf("removing unknown callback must not fail: %v", err)
	}
}

func TestRemoveAllListeners(t *testing.T) {
	ee := New()
	noop := event.NewCallback(func(event.Event) {})
	_ = ee.On("a", noop)
	_ = ee.On("b", noop)
	_ = ee.On("c", noop)

	if diff := cmp.Diff([]string{"a", "b", "c"}, ee.EventTypes()); diff != "" {
		t.Errorf("unexpected types (-want +got):\n%s", diff)
	}

	ee.RemoveAllListeners("a")
	if diff := cmp.Diff([]string{"b", "c"}, ee.EventTypes()); diff != "" {
		t.Errorf("unexpected types (-want +got):\n%s", diff)
	}

	ee.RemoveAllListeners()
	if len(ee.EventTypes()) != 0 {
		t.Error("expected no types")
	}
}

func TestUnhandledError(t *testing.T) {
	ee := New()
	msg := faker.Lorem().Sentence(3)

	err := ee.Emit(ErrorEvent, event.NewObject(ErrorEvent, map[string]any{"message": msg}))
	if !errors.Is(err, ErrUnhandledError) {
		t.Fatalf("expected ErrUnhandledError, got %v", err)
	}
	var ue *UnhandledError
	if !errors.As(err, &ue) {
		t.Fatal("expected *UnhandledError")
	}
	if ue.Event.EventType() != ErrorEvent {
		t.Errorf("expected error event payload, got %q", ue.Event.EventType())
	}

	_ = ee.On(ErrorEvent, event.NewCallback(func(event.Event) {}))
	if err := ee.Emit(ErrorEvent, event.NewObject(ErrorEvent, nil)); err != nil {
		t.Errorf("handled error event must not fail: %v", err)
	}
}

func TestNilCallback(t *testing.T) {
	if err := New().On("x", nil); !errors.Is(err, ErrNilCallback) {
		t.Errorf("expected ErrNilCallback, got %v", err)
	}
}

func TestWithBinder(t *testing.T) {
	b := event.TestBinder()
	ee := New(WithMaxListeners(1))
	rec := event.NewRecorder()

	h, err := b.OnAll(ee, []string{"open", "close"}, rec.Listener())
	if err != nil {
		t.Fatalf("OnAll failed: %v", err)
	}

	name := faker.Name().FirstName()
	for _, typ := range []string{"open", "close", "other"} {
		if _, err := b.Emit(ee, event.NewObject(typ, map[string]any{"name": name})); err != nil {
			t.Fatalf("emit %s failed: %v", typ, err)
		}
	}
	if diff := cmp.Diff([]string{"open", "close"}, rec.Types()); diff != "" {
		t.Errorf("unexpected deliveries (-want +got):\n%s", diff)
	}

	if err := h.Destroy(); err != nil {
		t.Fatal(err)
	}
	if ee.ListenerCount("open") != 0 || ee.ListenerCount("close") != 0 {
		t.Error("expected both registrations to be removed")
	}
}
