package event

import (
	"errors"
	"slices"
	"sync/atomic"
)

// Handle represents one active effect, typically a listener registration.
// Destroy releases it. Only the first call has an effect; later calls return nil.
type Handle interface {
	Destroy() error
}

type handle struct {
	done       atomic.Bool
	destructor func() error
}

// NewHandle returns a Handle whose Destroy calls destructor exactly once.
//
// The handle is marked destroyed before destructor runs, so a Destroy call made
// from inside destructor is a no-op.
func NewHandle(destructor func() error) Handle {
	return &handle{destructor: destructor}
}

func (h *handle) Destroy() error {
	if !h.done.CompareAndSwap(false, true) {
		return nil
	}
	if h.destructor == nil {
		return nil
	}
	return h.destructor()
}

// NewCompositeHandle returns a single Handle that destroys all handles in order.
//
// A failing child does not stop the remaining releases: every child is
// destroyed and the errors are joined. Nil handles are skipped.
func NewCompositeHandle(handles ...Handle) Handle {
	hs := slices.Clone(handles)
	return NewHandle(func() error {
		var errs []error
		for _, h := range hs {
			if h == nil {
				continue
			}
			if err := h.Destroy(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// lateHandle is returned by wrappers whose listener may need to destroy the
// registration before the underlying Handle exists, which happens with
// sources that deliver on their own goroutines.
type lateHandle struct {
	h       atomic.Pointer[Handle]
	pending atomic.Bool
}

func (l *lateHandle) Destroy() error {
	l.pending.Store(true)
	if h := l.h.Load(); h != nil {
		return (*h).Destroy()
	}
	return nil
}

// bind attaches the registration. If Destroy was requested earlier the
// registration is released right away.
func (l *lateHandle) bind(h Handle) error {
	l.h.Store(&h)
	if l.pending.Load() {
		return h.Destroy()
	}
	return nil
}
