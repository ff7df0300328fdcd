package event

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestEmitDOM(t *testing.T) {
	d := newFakeDOM()
	var got Event
	h, _ := On(d, "submit", func(ev Event) { got = ev })
	defer h.Destroy()

	obj := NewObject("submit", map[string]any{"type": "shadowed", "form": "login"})
	obj.Bubbles, obj.Cancelable = true, true

	prevented, err := TestBinder().Emit(d, obj)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if prevented {
		t.Error("expected default not prevented")
	}

	native, ok := got.(*fakeNative)
	if !ok {
		t.Fatalf("expected native event, got %T", got)
	}
	if native.typ != "submit" || !native.bubbles || !native.cancelable {
		t.Errorf("unexpected init: %+v", native)
	}
	// builtin fields are not overwritten
	if diff := cmp.Diff(map[string]any{"form": "login"}, native.fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitDOMPreventDefault(t *testing.T) {
	d := newFakeDOM()
	h, _ := On(d, "click", func(ev Event) {
		ev.(*fakeNative).PreventDefault()
	})
	defer h.Destroy()

	obj := NewObject("click", nil)
	obj.Cancelable = true
	prevented, err := Emit(d, obj)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if !prevented {
		t.Error("expected default to be prevented")
	}

	prevented, _ = Emit(d, NewObject("click", nil))
	if prevented {
		t.Error("non cancelable event must not report prevented")
	}
}

func TestEmitEmitter(t *testing.T) {
	ee := NewRecordingEmitter(newFakeEmitter())
	obj := NewObject("saved", randomDetail())

	prevented, err := Emit(ee, obj)
	if err != nil || prevented {
		t.Fatalf("Emit = %v, %v", prevented, err)
	}
	emits := ee.Emits()
	if len(emits) != 1 || emits[0].Type != "saved" || emits[0].Event != Event(obj) {
		t.Errorf("unexpected emits: %+v", emits)
	}
}

func TestEmitEvented(t *testing.T) {
	var e Evented
	rec := NewRecorder()
	h, _ := e.On("x", rec.Listener())
	defer h.Destroy()

	if _, err := Emit(&e, NewObject("x", nil)); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if rec.Count() != 1 {
		t.Errorf("expected 1 delivery, got %d", rec.Count())
	}
}

func TestEmitUnsupported(t *testing.T) {
	targets := []any{nil, 7, listenOnlyDOM{newFakeDOM()}}
	for _, target := range targets {
		_, err := Emit(target, NewObject("x", nil))
		if !errors.Is(err, ErrUnsupportedEmitTarget) {
			t.Errorf("%T: expected ErrUnsupportedEmitTarget, got %v", target, err)
		}
		var te *TargetError
		if !errors.As(err, &te) || te.Op != "emit" {
			t.Errorf("%T: expected *TargetError with Op emit, got %v", target, err)
		}
	}
}

func TestEmitInvalidEvent(t *testing.T) {
	ee := newFakeEmitter()
	if _, err := Emit(ee, nil); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent for nil, got %v", err)
	}
	if _, err := Emit(ee, NewObject("", nil)); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent for empty type, got %v", err)
	}
	if _, err := Emit(ee, (*Object)(nil)); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent for nil *Object, got %v", err)
	}
	if _, err := Emit(&Evented{}, (*Object)(nil)); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent for nil *Object on Evented, got %v", err)
	}
	if err := (&Evented{}).Emit((*Object)(nil)); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected Evented.Emit to reject nil *Object, got %v", err)
	}
}

type failingEmitter struct {
	*fakeEmitter
	err error
}

func (f failingEmitter) Emit(string, Event) error { return f.err }

func TestEmitPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := TestBinder().Emit(failingEmitter{newFakeEmitter(), boom}, NewObject("x", nil))
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestBinderWithProviders(t *testing.T) {
	b := NewBinder(
		WithLogger(slog.New(slog.DiscardHandler)),
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithMeterProvider(noop.NewMeterProvider()),
	)

	prev := Default()
	SetDefault(b)
	defer SetDefault(prev)
	if Default() != b {
		t.Fatal("expected SetDefault to replace the default binder")
	}
	SetDefault(nil)
	if Default() != b {
		t.Fatal("expected SetDefault(nil) to be ignored")
	}

	ee := newFakeEmitter()
	rec := NewRecorder()
	h, err := On(ee, "ping", rec.Listener())
	if err != nil {
		t.Fatalf("On failed: %v", err)
	}
	defer h.Destroy()

	if _, err := Emit(ee, NewObject("ping", nil)); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if rec.Count() != 1 {
		t.Errorf("expected 1 delivery, got %d", rec.Count())
	}
}
