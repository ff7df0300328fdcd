package event

import (
	"errors"
	"slices"
	"sync"
	"time"

	"syreclabs.com/go/faker"
)

func init() {
	faker.Seed(time.Now().UnixNano())
}

const waitChTimeoutMS = 100

func wait(ch chan struct{}, timeout int) bool {
	select {
	case <-ch:
		return true
	case <-time.After(time.Millisecond * time.Duration(timeout)):
		return false
	}
}

func randomDetail() map[string]any {
	return map[string]any{
		"name":  faker.Name().Name(),
		"email": faker.Internet().Email(),
	}
}

// fakeEmitter is a minimal EmitterTarget. failOn makes On fail for a type.
type fakeEmitter struct {
	mu        sync.Mutex
	listeners map[string][]*Callback
	failOn    map[string]error
	removed   []string
}

func newFakeEmitter() *fakeEmitter {
	return &fakeEmitter{listeners: make(map[string][]*Callback), failOn: make(map[string]error)}
}

func (f *fakeEmitter) On(typ string, cb *Callback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[typ]; err != nil {
		return err
	}
	f.listeners[typ] = append(f.listeners[typ], cb)
	return nil
}

func (f *fakeEmitter) RemoveListener(typ string, cb *Callback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, typ)
	if i := slices.Index(f.listeners[typ], cb); i >= 0 {
		f.listeners[typ] = slices.Delete(f.listeners[typ], i, i+1)
	}
	return nil
}

func (f *fakeEmitter) Emit(typ string, ev Event) error {
	f.mu.Lock()
	cbs := slices.Clone(f.listeners[typ])
	f.mu.Unlock()
	for _, cb := range cbs {
		cb.Call(ev)
	}
	return nil
}

func (f *fakeEmitter) count(typ string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners[typ])
}

// fakeNative is a NativeEvent with one builtin field, "type".
type fakeNative struct {
	typ        string
	bubbles    bool
	cancelable bool
	prevented  bool
	fields     map[string]any
}

func (n *fakeNative) EventType() string { return n.typ }

func (n *fakeNative) InitEvent(typ string, bubbles, cancelable bool) {
	n.typ, n.bubbles, n.cancelable = typ, bubbles, cancelable
}

func (n *fakeNative) HasField(key string) bool {
	if key == "type" {
		return true
	}
	_, ok := n.fields[key]
	return ok
}

func (n *fakeNative) SetField(key string, v any) {
	if n.fields == nil {
		n.fields = make(map[string]any)
	}
	n.fields[key] = v
}

func (n *fakeNative) DefaultPrevented() bool { return n.prevented }

func (n *fakeNative) PreventDefault() {
	if n.cancelable {
		n.prevented = true
	}
}

type domEntry struct {
	cb      *Callback
	capture bool
}

// fakeDOM is a flat DOMDispatcher without propagation.
type fakeDOM struct {
	mu        sync.Mutex
	listeners map[string][]domEntry
	last      *fakeNative
}

func newFakeDOM() *fakeDOM {
	return &fakeDOM{listeners: make(map[string][]domEntry)}
}

func (d *fakeDOM) AddEventListener(typ string, cb *Callback, capture bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[typ] = append(d.listeners[typ], domEntry{cb: cb, capture: capture})
}

func (d *fakeDOM) RemoveEventListener(typ string, cb *Callback, capture bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[typ] = slices.DeleteFunc(d.listeners[typ], func(e domEntry) bool {
		return e.cb == cb && e.capture == capture
	})
}

func (d *fakeDOM) CreateEvent() NativeEvent {
	return &fakeNative{}
}

func (d *fakeDOM) DispatchEvent(ev NativeEvent) bool {
	if n, ok := ev.(*fakeNative); ok {
		d.last = n
	}
	d.mu.Lock()
	entries := slices.Clone(d.listeners[ev.EventType()])
	d.mu.Unlock()
	for _, e := range entries {
		e.cb.Call(ev)
	}
	return !ev.DefaultPrevented()
}

func (d *fakeDOM) entries(typ string) []domEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.listeners[typ])
}

// listenOnlyDOM can register listeners but not create events.
type listenOnlyDOM struct {
	d *fakeDOM
}

func (l listenOnlyDOM) AddEventListener(typ string, cb *Callback, capture bool) {
	l.d.AddEventListener(typ, cb, capture)
}

func (l listenOnlyDOM) RemoveEventListener(typ string, cb *Callback, capture bool) {
	l.d.RemoveEventListener(typ, cb, capture)
}

var errRegister = errors.New("register failed")
