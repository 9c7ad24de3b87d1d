package fx

import (
	"errors"
	"fmt"
)

// Complete is returned by an AnimateFunc to end its animation early. The
// animation resolves as if it had reached progress 1. It is never reported as
// a failure.
var Complete = errors.New("fx: animation complete")

var (
	// ErrInvalidOptions is wrapped by every option validation failure.
	ErrInvalidOptions = errors.New("fx: invalid animation options")

	// ErrNilCallback is returned when Animate or Queue is given a nil function.
	ErrNilCallback = errors.New("fx: nil callback")

	// ErrNoFrameClock is returned by New when Config.Frames is nil.
	ErrNoFrameClock = errors.New("fx: config has no frame clock")

	// ErrPending is returned by Future.Result before the future has settled.
	ErrPending = errors.New("fx: future has not settled")

	// ErrCleared settles queued animations that were discarded by ClearQueue
	// before they started.
	ErrCleared = errors.New("fx: queued task cleared")
)

// CallbackError reports a user callback that failed, either by returning an
// error or by panicking. It is local to one animation or queued task.
type CallbackError struct {
	Op    string // "animate" or "queue"
	Node  any
	Err   error
	Panic any // recovered panic value, nil if the callback returned Err
}

func (e *CallbackError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("fx: %s callback on %v panicked: %v", e.Op, e.Node, e.Panic)
	}
	return fmt.Sprintf("fx: %s callback on %v: %v", e.Op, e.Node, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// recoverCallback converts a recovered panic value into a CallbackError.
func recoverCallback(op string, node any, r any) error {
	err, _ := r.(error)
	return &CallbackError{Op: op, Node: node, Err: err, Panic: r}
}
