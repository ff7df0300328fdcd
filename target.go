package event

// Kind identifies the registration mechanism a target supports.
type Kind int

const (
	// KindUnknown is a target with no supported capability.
	KindUnknown Kind = iota
	// KindDOM is a target with AddEventListener/RemoveEventListener.
	KindDOM
	// KindEmitter is a Node-style target with On/RemoveListener/Emit.
	KindEmitter
	// KindEvented is a target with On returning a Handle and Emit, but no RemoveListener.
	KindEvented
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindDOM:
		return "dom"
	case KindEmitter:
		return "emitter"
	case KindEvented:
		return "evented"
	default:
		return "unknown"
	}
}

// DOMTarget is the DOM-style listener registration contract.
type DOMTarget interface {
	AddEventListener(typ string, cb *Callback, capture bool)
	RemoveEventListener(typ string, cb *Callback, capture bool)
}

// NativeEvent is an event created by a DOM-style target for dispatch.
type NativeEvent interface {
	Event
	InitEvent(typ string, bubbles, cancelable bool)
	HasField(key string) bool
	SetField(key string, v any)
	DefaultPrevented() bool
}

// DOMDispatcher is a DOMTarget that can also create and dispatch events.
type DOMDispatcher interface {
	DOMTarget
	CreateEvent() NativeEvent
	DispatchEvent(ev NativeEvent) bool
}

// EmitterTarget is the Node-style emitter contract.
type EmitterTarget interface {
	On(typ string, cb *Callback) error
	RemoveListener(typ string, cb *Callback) error
	Emit(typ string, ev Event) error
}

// EventedTarget is the contract of objects embedding Evented.
type EventedTarget interface {
	On(typ string, l Listener) (Handle, error)
	Emit(ev Event) error
}

// Target is a classified event source.
//
// Classification happens once: listening dispatches on Kind and emitting on
// EmitKind. A Target can be passed anywhere a raw target is accepted.
type Target struct {
	value      any
	kind       Kind
	emitKind   Kind
	dom        DOMTarget
	dispatcher DOMDispatcher
	emitter    EmitterTarget
	evented    EventedTarget
}

// Classify inspects v and records which capabilities it supports.
//
// Returns a *TargetError wrapping ErrUnsupportedTarget if v can neither be
// listened on nor emitted to.
func Classify(v any) (Target, error) {
	if t, ok := v.(Target); ok {
		return t, nil
	}
	if t, ok := v.(*Target); ok && t != nil {
		return *t, nil
	}

	t := Target{value: v}

	// listen: DOM first, then Emitter, then Evented
	switch x := v.(type) {
	case DOMTarget:
		t.kind, t.dom = KindDOM, x
	case EmitterTarget:
		t.kind, t.emitter = KindEmitter, x
	case EventedTarget:
		t.kind, t.evented = KindEvented, x
	}

	// emit: same priority, but a DOM target must be able to create events
	switch x := v.(type) {
	case DOMDispatcher:
		t.emitKind, t.dispatcher = KindDOM, x
	case EmitterTarget:
		t.emitKind, t.emitter = KindEmitter, x
	case EventedTarget:
		t.emitKind, t.evented = KindEvented, x
	}

	if t.kind == KindUnknown && t.emitKind == KindUnknown {
		return Target{}, &TargetError{Op: "classify", Target: v, Err: ErrUnsupportedTarget}
	}
	return t, nil
}

// MustClassify is like Classify but panics on error.
func MustClassify(v any) Target {
	t, err := Classify(v)
	if err != nil {
		panic(err)
	}
	return t
}

// Kind returns the registration kind.
func (t Target) Kind() Kind {
	return t.kind
}

// EmitKind returns the dispatch kind.
func (t Target) EmitKind() Kind {
	return t.emitKind
}

// Value returns the underlying target.
func (t Target) Value() any {
	return t.value
}
