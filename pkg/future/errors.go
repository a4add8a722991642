package future

import (
	"errors"
	"fmt"
	"runtime/debug"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
)

var (
	// ErrTimeout is returned by WaitTimeout when the deadline passes first.
	ErrTimeout = fmt.Errorf("future: %w", tperrors.ErrTimeout)

	// ErrNilRejection stands in for a nil error passed to Reject.
	ErrNilRejection = errors.New("future: rejected without an error")
)

// PanicError carries a value recovered from a panicking task together with
// the stack of the goroutine that panicked.
type PanicError struct {
	Value interface{}
	Stack []byte
}

// NewPanicError captures the current stack. Call it from the deferred
// function that recovered r.
func NewPanicError(r interface{}) *PanicError {
	return &PanicError{Value: r, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Unwrap exposes the recovered value when the task panicked with an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
