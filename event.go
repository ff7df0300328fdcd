package event

import "maps"

// Event is the payload contract: anything that carries an event type.
type Event interface {
	EventType() string
}

// EventInitializer is implemented by payloads that carry the DOM init flags
// used when a native event is synthesized by Emit.
type EventInitializer interface {
	EventInit() (bubbles, cancelable bool)
}

// FieldCarrier is implemented by payloads with extra fields. Emit copies every
// field the native event does not already have onto it.
type FieldCarrier interface {
	Fields() map[string]any
}

// Listener handles a delivered event.
type Listener func(Event)

// Callback gives a Listener a comparable identity.
//
// Go functions cannot be compared, so targets register and remove *Callback
// values. The binder creates a fresh Callback for every registration and the
// returned Handle removes exactly that pointer.
type Callback struct {
	fn Listener
}

// NewCallback wraps a listener.
func NewCallback(l Listener) *Callback {
	return &Callback{fn: l}
}

// Call invokes the wrapped listener. It is safe on a nil Callback.
func (c *Callback) Call(ev Event) {
	if c == nil || c.fn == nil {
		return
	}
	c.fn(ev)
}

// Object is a plain event payload: a type, the DOM init flags and arbitrary
// detail fields.
type Object struct {
	Type       string         `json:"type" msgpack:"type"`
	Bubbles    bool           `json:"bubbles,omitempty" msgpack:"bubbles,omitempty"`
	Cancelable bool           `json:"cancelable,omitempty" msgpack:"cancelable,omitempty"`
	Detail     map[string]any `json:"detail,omitempty" msgpack:"detail,omitempty"`
}

// NewObject creates an event payload. The detail map is copied.
func NewObject(typ string, detail map[string]any) *Object {
	o := &Object{Type: typ}
	if detail != nil {
		o.Detail = maps.Clone(detail)
	}
	return o
}

// EventType returns the event type. A nil Object has the empty type, which
// Emit rejects with ErrInvalidEvent.
func (o *Object) EventType() string {
	if o == nil {
		return ""
	}
	return o.Type
}

// EventInit returns the bubbles and cancelable flags.
func (o *Object) EventInit() (bubbles, cancelable bool) {
	if o == nil {
		return false, false
	}
	return o.Bubbles, o.Cancelable
}

// Fields returns the detail fields.
func (o *Object) Fields() map[string]any {
	if o == nil {
		return nil
	}
	return o.Detail
}

// Get returns a detail field.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.Detail[key]
	return v, ok
}

// Set stores a detail field and returns the object for chaining.
func (o *Object) Set(key string, v any) *Object {
	if o.Detail == nil {
		o.Detail = make(map[string]any)
	}
	o.Detail[key] = v
	return o
}

// Compile-time checks
var (
	_ Event            = (*Object)(nil)
	_ EventInitializer = (*Object)(nil)
	_ FieldCarrier     = (*Object)(nil)
)
