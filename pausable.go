package event

import "sync/atomic"

// PausableHandle is a Handle whose listener can be paused and resumed.
// Events delivered while paused are dropped, not queued.
type PausableHandle struct {
	Handle
	paused atomic.Bool
}

// Pause stops forwarding events to the listener. The registration stays.
func (p *PausableHandle) Pause() {
	p.paused.Store(true)
}

// Resume forwards events to the listener again.
func (p *PausableHandle) Resume() {
	p.paused.Store(false)
}

// Paused reports whether the listener is paused.
func (p *PausableHandle) Paused() bool {
	return p.paused.Load()
}

// Pausable registers a listener that can be paused without unregistering.
func (b *Binder) Pausable(target any, typ string, listener Listener, opts ...ListenOption) (*PausableHandle, error) {
	return b.pausable(target, []string{typ}, listener, opts)
}

// PausableAll is like Pausable for several types sharing one pause state.
func (b *Binder) PausableAll(target any, types []string, listener Listener, opts ...ListenOption) (*PausableHandle, error) {
	return b.pausable(target, types, listener, opts)
}

func (b *Binder) pausable(target any, types []string, listener Listener, opts []ListenOption) (*PausableHandle, error) {
	p := &PausableHandle{}
	h, err := b.bind(target, types, listener, func(Event) bool {
		return !p.paused.Load()
	}, opts)
	if err != nil {
		return nil, err
	}
	p.Handle = h
	return p, nil
}

// Pausable registers a pausable listener using the default Binder.
func Pausable(target any, typ string, listener Listener, opts ...ListenOption) (*PausableHandle, error) {
	return Default().Pausable(target, typ, listener, opts...)
}

// PausableAll registers a pausable listener for several types using the default Binder.
func PausableAll(target any, types []string, listener Listener, opts ...ListenOption) (*PausableHandle, error) {
	return Default().PausableAll(target, types, listener, opts...)
}
