// Package dom provides a DOM-style node tree with capture/target/bubble event
// dispatch. Nodes satisfy event.DOMDispatcher, so they can be used with
// event.On, event.Once, event.Pausable and event.Emit.
//
// Dispatch follows the W3C DOM EventTarget model:
// https://dom.spec.whatwg.org/#interface-eventtarget
//
// Usage:
//
//	doc := dom.NewDocument()
//	list := doc.CreateElement("ul")
//	item := doc.CreateElement("li")
//	doc.AppendChild(list)
//	list.AppendChild(item)
//
//	h, _ := event.On(list, "click", func(ev event.Event) {
//	    fmt.Println("clicked", ev.(*dom.Event).Target().Name())
//	})
//	event.Emit(item, &event.Object{Type: "click", Bubbles: true})
package dom

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/feidao/event"
)

var (
	// ErrHierarchy is returned when an append would create a cycle.
	ErrHierarchy = errors.New("dom: node cannot be inserted here")
	// ErrNotFound is returned when removing a node that is not a child.
	ErrNotFound = errors.New("dom: node is not a child of this node")
)

// listenerEntry pairs a callback with its capture flag.
type listenerEntry struct {
	cb      *event.Callback
	capture bool
	removed atomic.Bool // set when removed, so an in-flight dispatch skips it
}

// Node is an element in a document tree.
//
// Thread Safety:
// Listener registration and tree mutation are safe for concurrent use.
// Dispatch is synchronous and runs listeners on the caller's goroutine.
type Node struct {
	name      string
	doc       *Document
	mu        sync.RWMutex
	parent    *Node
	children  []*Node
	listeners map[string][]*listenerEntry
}

// Document is the root of a node tree and the factory for its nodes and events.
type Document struct {
	Node
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	d := &Document{}
	d.name = "#document"
	d.doc = d
	return d
}

// CreateElement creates a detached node owned by the document.
func (d *Document) CreateElement(name string) *Node {
	return &Node{name: name, doc: d}
}

// NewEvent creates an uninitialized event. Call InitEvent before dispatch.
func (d *Document) NewEvent() *Event {
	return &Event{}
}

// Name returns the node name.
func (n *Node) Name() string {
	return n.name
}

// OwnerDocument returns the document that created the node.
func (n *Node) OwnerDocument() *Document {
	return n.doc
}

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.children)
}

// AppendChild moves child to the end of n's children.
func (n *Node) AppendChild(child *Node) error {
	if child == nil || child == n || (n.doc != nil && child == &n.doc.Node) {
		return ErrHierarchy
	}
	for p := n; p != nil; p = p.Parent() {
		if p == child {
			return ErrHierarchy
		}
	}
	if old := child.Parent(); old != nil {
		_ = old.RemoveChild(child)
	}

	n.mu.Lock()
	n.children = append(n.children, child)
	n.mu.Unlock()

	child.mu.Lock()
	child.parent = n
	child.mu.Unlock()
	return nil
}

// RemoveChild detaches child from n.
func (n *Node) RemoveChild(child *Node) error {
	n.mu.Lock()
	idx := slices.Index(n.children, child)
	if idx < 0 {
		n.mu.Unlock()
		return ErrNotFound
	}
	n.children = slices.Delete(n.children, idx, idx+1)
	n.mu.Unlock()

	child.mu.Lock()
	child.parent = nil
	child.mu.Unlock()
	return nil
}

// AddEventListener registers cb for typ. Adding the same callback with the
// same capture flag twice has no effect.
func (n *Node) AddEventListener(typ string, cb *event.Callback, capture bool) {
	if cb == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, e := range n.listeners[typ] {
		if e.cb == cb && e.capture == capture {
			return
		}
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]*listenerEntry)
	}
	n.listeners[typ] = append(n.listeners[typ], &listenerEntry{cb: cb, capture: capture})
}

// RemoveEventListener removes the registration matching cb and capture.
func (n *Node) RemoveEventListener(typ string, cb *event.Callback, capture bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	entries := n.listeners[typ]
	for i, e := range entries {
		if e.cb == cb && e.capture == capture {
			e.removed.Store(true)
			n.listeners[typ] = slices.Delete(entries, i, i+1)
			if len(n.listeners[typ]) == 0 {
				delete(n.listeners, typ)
			}
			return
		}
	}
}

// ListenerCount returns the number of listeners for typ.
func (n *Node) ListenerCount(typ string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners[typ])
}

// CreateEvent creates an uninitialized event from the owner document.
func (n *Node) CreateEvent() event.NativeEvent {
	if n.doc == nil {
		return &Event{}
	}
	return n.doc.NewEvent()
}

// DispatchEvent dispatches native on n through the capture, target and bubble
// phases. Returns false if the event is cancelable and a listener called
// PreventDefault, true otherwise.
//
// Events not created by this package are copied into an *Event first.
func (n *Node) DispatchEvent(native event.NativeEvent) bool {
	ev, ok := native.(*Event)
	if !ok {
		ev = convert(native)
	}
	if ev == nil || ev.typ == "" || ev.phase != PhaseNone {
		return true
	}

	ev.target = n
	var path []*Node // parent first, root last
	for p := n.Parent(); p != nil; p = p.Parent() {
		path = append(path, p)
	}

	ev.phase = PhaseCapturing
	for i := len(path) - 1; i >= 0 && !ev.propagationStopped; i-- {
		path[i].invoke(ev)
	}

	if !ev.propagationStopped {
		ev.phase = PhaseAtTarget
		n.invoke(ev)
	}

	if ev.bubbles {
		ev.phase = PhaseBubbling
		for _, p := range path {
			if ev.propagationStopped {
				break
			}
			p.invoke(ev)
		}
	}

	ev.phase = PhaseNone
	ev.currentTarget = nil
	return !ev.defaultPrevented
}

// invoke runs the listeners of n that match the event's phase
func (n *Node) invoke(ev *Event) {
	n.mu.RLock()
	entries := slices.Clone(n.listeners[ev.typ])
	n.mu.RUnlock()

	ev.currentTarget = n
	for _, e := range entries {
		if ev.immediatePropagationStopped {
			return
		}
		if e.removed.Load() {
			continue
		}
		switch ev.phase {
		case PhaseCapturing:
			if !e.capture {
				continue
			}
		case PhaseBubbling:
			if e.capture {
				continue
			}
		}
		// panics propagate to the caller of DispatchEvent
		e.cb.Call(ev)
	}
}

// convert copies a foreign native event into an *Event
func convert(native event.NativeEvent) *Event {
	if native == nil {
		return nil
	}
	var bubbles, cancelable bool
	if init, ok := native.(event.EventInitializer); ok {
		bubbles, cancelable = init.EventInit()
	}
	ev := NewEvent(native.EventType(), bubbles, cancelable)
	if fc, ok := native.(event.FieldCarrier); ok {
		for k, v := range fc.Fields() {
			ev.SetField(k, v)
		}
	}
	return ev
}

// Compile-time checks
var (
	_ event.DOMDispatcher = (*Node)(nil)
	_ event.DOMDispatcher = (*Document)(nil)
)
