package event

import (
	"sync"
	"time"
)

// TestBinder creates a binder configured for testing, with tracing and
// metrics disabled.
func TestBinder() *Binder {
	return NewBinder(
		WithTracing(false),
		WithMetrics(false),
	)
}

// RecordedEvent represents an event received by a Recorder
type RecordedEvent struct {
	Event     Event
	Timestamp time.Time
}

// Recorder is a listener that collects every event it receives.
// Useful for asserting deliveries in tests, including deliveries made on
// other goroutines by remote emitters.
type Recorder struct {
	mu       sync.Mutex
	received []RecordedEvent
	notify   chan struct{}
}

// NewRecorder creates a new recorder.
func NewRecorder() *Recorder {
	return &Recorder{notify: make(chan struct{}, 1)}
}

// Listener returns the listener function for use with On.
func (r *Recorder) Listener() Listener {
	return func(ev Event) {
		r.mu.Lock()
		r.received = append(r.received, RecordedEvent{Event: ev, Timestamp: time.Now()})
		r.mu.Unlock()

		select {
		case r.notify <- struct{}{}:
		default:
		}
	}
}

// Received returns a copy of all received events
func (r *Recorder) Received() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]RecordedEvent, len(r.received))
	copy(result, r.received)
	return result
}

// Events returns the received events in delivery order
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Event, len(r.received))
	for i, rec := range r.received {
		result[i] = rec.Event
	}
	return result
}

// Types returns the types of the received events in delivery order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]string, len(r.received))
	for i, rec := range r.received {
		result[i] = rec.Event.EventType()
	}
	return result
}

// Count returns the number of events received
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.received)
}

// Last returns the last received event, or nil if none
func (r *Recorder) Last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.received) == 0 {
		return nil
	}
	return r.received[len(r.received)-1].Event
}

// Wait blocks until at least n events were received or timeout elapses.
// Returns true if n events were received.
func (r *Recorder) Wait(n int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if r.Count() >= n {
			return true
		}
		select {
		case <-r.notify:
		case <-deadline.C:
			return r.Count() >= n
		}
	}
}

// Reset clears all received events
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.received = nil
	r.mu.Unlock()
}

// RecordedEmit represents an Emit call seen by a RecordingEmitter
type RecordedEmit struct {
	Type  string
	Event Event
}

// RecordingEmitter wraps an EmitterTarget and records every Emit call.
type RecordingEmitter struct {
	EmitterTarget
	mu    sync.Mutex
	emits []RecordedEmit
}

// NewRecordingEmitter creates an emitter that records all emitted events.
// It wraps the provided emitter, which is required.
func NewRecordingEmitter(t EmitterTarget) *RecordingEmitter {
	if t == nil {
		panic("event: emitter is required for NewRecordingEmitter")
	}
	return &RecordingEmitter{EmitterTarget: t}
}

// Emit records the event and delegates to the underlying emitter
func (r *RecordingEmitter) Emit(typ string, ev Event) error {
	r.mu.Lock()
	r.emits = append(r.emits, RecordedEmit{Type: typ, Event: ev})
	r.mu.Unlock()

	return r.EmitterTarget.Emit(typ, ev)
}

// Emits returns a copy of all recorded Emit calls
func (r *RecordingEmitter) Emits() []RecordedEmit {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]RecordedEmit, len(r.emits))
	copy(result, r.emits)
	return result
}
