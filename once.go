package event

import "sync/atomic"

// Once registers listener for the next occurrence of typ only.
//
// The registration is destroyed before listener runs, so the listener is
// invoked exactly one time even if it triggers another event of the same type.
func (b *Binder) Once(target any, typ string, listener Listener, opts ...ListenOption) (Handle, error) {
	return b.once(target, []string{typ}, listener, opts)
}

// OnceAll is like Once for several types: the first event of any of them
// fires the listener and removes every registration.
func (b *Binder) OnceAll(target any, types []string, listener Listener, opts ...ListenOption) (Handle, error) {
	return b.once(target, types, listener, opts)
}

func (b *Binder) once(target any, types []string, listener Listener, opts []ListenOption) (Handle, error) {
	var fired atomic.Bool
	late := &lateHandle{}

	h, err := b.bind(target, types, listener, func(ev Event) bool {
		if !fired.CompareAndSwap(false, true) {
			return false
		}
		if err := late.Destroy(); err != nil {
			b.logger.Warn("once: release failed", "event", ev.EventType(), "error", err)
		}
		return true
	}, opts)
	if err != nil {
		return nil, err
	}
	if err := late.bind(h); err != nil {
		b.logger.Warn("once: release failed", "error", err)
	}
	return late, nil
}

// Once registers a one-shot listener using the default Binder.
func Once(target any, typ string, listener Listener, opts ...ListenOption) (Handle, error) {
	return Default().Once(target, typ, listener, opts...)
}

// OnceAll registers a one-shot listener for several types using the default Binder.
func OnceAll(target any, types []string, listener Listener, opts ...ListenOption) (Handle, error) {
	return Default().OnceAll(target, types, listener, opts...)
}
