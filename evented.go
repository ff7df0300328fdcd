package event

import "sync"

// Evented gives a type a minimal event capability: one listener slot per
// event type. Registering a second listener for a type replaces the first.
// Callers that need several listeners per type should use an emitter.
//
// The zero value is ready to use and is meant to be embedded:
//
//	type Widget struct {
//	    event.Evented
//	}
//
//	w := &Widget{}
//	h, _ := event.On(w, "ping", listener)
//	event.Emit(w, event.NewObject("ping", nil))
type Evented struct {
	mu    sync.RWMutex
	slots map[string]*Callback
}

// On assigns listener to the slot for typ. The returned Handle clears the
// slot, unless another listener has replaced it in the meantime.
func (e *Evented) On(typ string, listener Listener) (Handle, error) {
	cb := NewCallback(listener)

	e.mu.Lock()
	if e.slots == nil {
		e.slots = make(map[string]*Callback)
	}
	e.slots[typ] = cb
	e.mu.Unlock()

	return NewHandle(func() error {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.slots[typ] == cb {
			delete(e.slots, typ)
		}
		return nil
	}), nil
}

// Emit synchronously invokes the listener assigned to ev's type, if any.
// Returns ErrInvalidEvent for a nil event or an empty type.
func (e *Evented) Emit(ev Event) error {
	if ev == nil || ev.EventType() == "" {
		return ErrInvalidEvent
	}
	e.mu.RLock()
	cb := e.slots[ev.EventType()]
	e.mu.RUnlock()

	cb.Call(ev)
	return nil
}

// Listening reports whether a listener is assigned to typ.
func (e *Evented) Listening(typ string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.slots[typ] != nil
}

// Compile-time check
var _ EventedTarget = (*Evented)(nil)
