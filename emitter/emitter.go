// Package emitter provides a Node-style in-memory event emitter.
//
// Emitter satisfies event.EmitterTarget, so it works with event.On,
// event.Once, event.Pausable and event.Emit. The subpackages redis, nats and
// kafka provide the same contract backed by remote brokers.
//
// Usage:
//
//	ee := emitter.New()
//	h, _ := event.On(ee, "data", func(ev event.Event) {
//	    fmt.Println("got", ev.EventType())
//	})
//	defer h.Destroy()
//
//	ee.Emit("data", event.NewObject("data", map[string]any{"n": 1}))
package emitter

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/feidao/event"
)

// ErrorEvent is the event type that must have a listener when emitted.
const ErrorEvent = "error"

// DefaultMaxListeners is the per-type count above which a warning is logged.
var DefaultMaxListeners = 10

var (
	// ErrNilCallback is returned when registering a nil callback.
	ErrNilCallback = errors.New("emitter: callback is required")
	// ErrUnhandledError is returned by Emit for an "error" event with no listener.
	ErrUnhandledError = errors.New("emitter: unhandled error event")
)

// UnhandledError carries the payload of an unhandled "error" event.
type UnhandledError struct {
	Event event.Event
}

func (e *UnhandledError) Error() string {
	if fc, ok := e.Event.(event.FieldCarrier); ok {
		if msg, ok := fc.Fields()["message"]; ok {
			return fmt.Sprintf("%v: %v", ErrUnhandledError, msg)
		}
	}
	return ErrUnhandledError.Error()
}

func (e *UnhandledError) Unwrap() error {
	return ErrUnhandledError
}

type listenerEntry struct {
	cb   *event.Callback
	once bool
}

// Emitter is a Node-style event emitter.
//
// Thread Safety:
// Emitter is safe for concurrent use. Listeners run synchronously on the
// goroutine calling Emit, in registration order, against a snapshot taken
// when Emit starts.
type Emitter struct {
	mu           sync.RWMutex
	listeners    map[string][]*listenerEntry
	maxListeners int
	warned       map[string]bool
	logger       *slog.Logger
}

// Option configures an Emitter
type Option func(*Emitter)

// WithMaxListeners sets the per-type count above which a warning is logged.
// Zero disables the warning.
func WithMaxListeners(n int) Option {
	return func(e *Emitter) {
		if n >= 0 {
			e.maxListeners = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Emitter) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{
		listeners:    make(map[string][]*listenerEntry),
		maxListeners: DefaultMaxListeners,
		warned:       make(map[string]bool),
		logger:       event.Logger("emitter"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetMaxListeners changes the leak warning threshold. Zero disables it.
func (e *Emitter) SetMaxListeners(n int) {
	if n < 0 {
		return
	}
	e.mu.Lock()
	e.maxListeners = n
	e.warned = make(map[string]bool)
	e.mu.Unlock()
}

// On appends cb to the listeners of typ.
// The same callback may be registered several times.
func (e *Emitter) On(typ string, cb *event.Callback) error {
	return e.add(typ, &listenerEntry{cb: cb}, false)
}

// Once appends cb to the listeners of typ; it is removed before its first call.
func (e *Emitter) Once(typ string, cb *event.Callback) error {
	return e.add(typ, &listenerEntry{cb: cb, once: true}, false)
}

// Prepend inserts cb before the existing listeners of typ.
func (e *Emitter) Prepend(typ string, cb *event.Callback) error {
	return e.add(typ, &listenerEntry{cb: cb}, true)
}

func (e *Emitter) add(typ string, entry *listenerEntry, front bool) error {
	if entry.cb == nil {
		return ErrNilCallback
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if front {
		e.listeners[typ] = slices.Insert(e.listeners[typ], 0, entry)
	} else {
		e.listeners[typ] = append(e.listeners[typ], entry)
	}

	if n := len(e.listeners[typ]); e.maxListeners > 0 && n > e.maxListeners && !e.warned[typ] {
		e.warned[typ] = true
		e.logger.Warn("possible listener leak detected",
			"event", typ, "listeners", n, "max", e.maxListeners)
	}
	return nil
}

// RemoveListener removes the most recently added registration of cb for typ.
// Removing an unknown callback is not an error.
func (e *Emitter) RemoveListener(typ string, cb *event.Callback) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.listeners[typ]
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].cb == cb {
			e.removeAt(typ, i)
			return nil
		}
	}
	return nil
}

// removeAt must be called with the lock held
func (e *Emitter) removeAt(typ string, i int) {
	entries := slices.Delete(e.listeners[typ], i, i+1)
	if len(entries) == 0 {
		delete(e.listeners, typ)
		delete(e.warned, typ)
		return
	}
	e.listeners[typ] = entries
}

// RemoveAllListeners removes every listener of the given types, or of all
// types when none are given.
func (e *Emitter) RemoveAllListeners(types ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(types) == 0 {
		e.listeners = make(map[string][]*listenerEntry)
		e.warned = make(map[string]bool)
		return
	}
	for _, typ := range types {
		delete(e.listeners, typ)
		delete(e.warned, typ)
	}
}

// Emit calls every listener of typ with ev.
//
// Emitting ErrorEvent with no listener returns an *UnhandledError.
func (e *Emitter) Emit(typ string, ev event.Event) error {
	e.mu.Lock()
	entries := slices.Clone(e.listeners[typ])
	// once listeners are removed before they run
	for _, entry := range entries {
		if !entry.once {
			continue
		}
		current := e.listeners[typ]
		if i := slices.Index(current, entry); i >= 0 {
			e.removeAt(typ, i)
		}
	}
	e.mu.Unlock()

	if len(entries) == 0 && typ == ErrorEvent {
		return &UnhandledError{Event: ev}
	}

	for _, entry := range entries {
		entry.cb.Call(ev)
	}
	return nil
}

// ListenerCount returns the number of listeners for typ.
func (e *Emitter) ListenerCount(typ string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[typ])
}

// EventTypes returns the types that have listeners, sorted.
func (e *Emitter) EventTypes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	types := make([]string, 0, len(e.listeners))
	for typ := range e.listeners {
		types = append(types, typ)
	}
	slices.Sort(types)
	return types
}

// Compile-time check
var _ event.EmitterTarget = (*Emitter)(nil)
