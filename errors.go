package event

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedTarget is returned when a target exposes none of the
	// registration capabilities (DOM, Emitter, Evented).
	ErrUnsupportedTarget = errors.New("unknown event emitter object")

	// ErrUnsupportedEmitTarget is returned when a target cannot dispatch events.
	ErrUnsupportedEmitTarget = errors.New("target must be an event emitter")

	// ErrInvalidEvent is returned when an event is nil or has an empty type.
	ErrInvalidEvent = errors.New("event must carry a type")
)

// TargetError records the dynamic type of a rejected target.
// It unwraps to ErrUnsupportedTarget or ErrUnsupportedEmitTarget.
type TargetError struct {
	Op     string
	Target any
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("event: %s %T: %v", e.Op, e.Target, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// IsUnsupportedTarget checks if an error indicates a target that cannot be
// listened on or emitted to.
func IsUnsupportedTarget(err error) bool {
	return errors.Is(err, ErrUnsupportedTarget) || errors.Is(err, ErrUnsupportedEmitTarget)
}
