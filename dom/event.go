package dom

import (
	"time"

	"github.com/feidao/event"
)

// Phase is the dispatch phase an event is in.
type Phase int

const (
	// PhaseNone means the event is not being dispatched.
	PhaseNone Phase = iota
	// PhaseCapturing runs listeners from the root down to the target's parent.
	PhaseCapturing
	// PhaseAtTarget runs listeners on the target itself.
	PhaseAtTarget
	// PhaseBubbling runs listeners from the target's parent up to the root.
	PhaseBubbling
)

// builtin names cannot be overwritten by SetField.
var builtin = map[string]struct{}{
	"type":             {},
	"bubbles":          {},
	"cancelable":       {},
	"target":           {},
	"currentTarget":    {},
	"eventPhase":       {},
	"defaultPrevented": {},
	"timeStamp":        {},
}

// Event is a native event dispatched through a node tree.
//
// This follows the W3C DOM Event interface:
// https://dom.spec.whatwg.org/#interface-event
//
// Event is NOT safe for concurrent access. It should only be used from the
// goroutine that calls DispatchEvent.
type Event struct {
	typ        string
	bubbles    bool
	cancelable bool
	timeStamp  time.Time

	target        *Node
	currentTarget *Node
	phase         Phase

	defaultPrevented            bool
	propagationStopped          bool
	immediatePropagationStopped bool

	fields map[string]any
}

// NewEvent creates an initialized event.
func NewEvent(typ string, bubbles, cancelable bool) *Event {
	ev := &Event{}
	ev.InitEvent(typ, bubbles, cancelable)
	return ev
}

// InitEvent sets the type and init flags. It has no effect on an event that
// is being dispatched.
func (e *Event) InitEvent(typ string, bubbles, cancelable bool) {
	if e.phase != PhaseNone {
		return
	}
	e.typ = typ
	e.bubbles = bubbles
	e.cancelable = cancelable
	e.timeStamp = time.Now()
	e.defaultPrevented = false
	e.propagationStopped = false
	e.immediatePropagationStopped = false
}

// EventType returns the event type.
func (e *Event) EventType() string {
	return e.typ
}

// EventInit returns the bubbles and cancelable flags.
func (e *Event) EventInit() (bubbles, cancelable bool) {
	return e.bubbles, e.cancelable
}

// Bubbles reports whether the event bubbles.
func (e *Event) Bubbles() bool {
	return e.bubbles
}

// Cancelable reports whether PreventDefault has an effect.
func (e *Event) Cancelable() bool {
	return e.cancelable
}

// TimeStamp returns when the event was initialized.
func (e *Event) TimeStamp() time.Time {
	return e.timeStamp
}

// Target returns the node the event was dispatched on.
func (e *Event) Target() *Node {
	return e.target
}

// CurrentTarget returns the node whose listeners are running.
func (e *Event) CurrentTarget() *Node {
	return e.currentTarget
}

// Phase returns the current dispatch phase.
func (e *Event) Phase() Phase {
	return e.phase
}

// PreventDefault marks the default action as canceled.
// It only has an effect on cancelable events.
func (e *Event) PreventDefault() {
	if e.cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault took effect.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation prevents the event from reaching further nodes. Remaining
// listeners on the current node still run.
func (e *Event) StopPropagation() {
	e.propagationStopped = true
}

// StopImmediatePropagation prevents any further listener from running.
func (e *Event) StopImmediatePropagation() {
	e.propagationStopped = true
	e.immediatePropagationStopped = true
}

// HasField reports whether key names a builtin property or a set field.
func (e *Event) HasField(key string) bool {
	if _, ok := builtin[key]; ok {
		return true
	}
	_, ok := e.fields[key]
	return ok
}

// SetField stores an extra field. Builtin properties are read-only.
func (e *Event) SetField(key string, v any) {
	if _, ok := builtin[key]; ok {
		return
	}
	if e.fields == nil {
		e.fields = make(map[string]any)
	}
	e.fields[key] = v
}

// Field returns an extra field.
func (e *Event) Field(key string) (any, bool) {
	v, ok := e.fields[key]
	return v, ok
}

// Fields returns the extra fields.
func (e *Event) Fields() map[string]any {
	return e.fields
}

// Compile-time checks
var (
	_ event.NativeEvent      = (*Event)(nil)
	_ event.EventInitializer = (*Event)(nil)
	_ event.FieldCarrier     = (*Event)(nil)
)
