// Package future provides a single-assignment result handle.
//
// New returns a Future and its Promise. The producer completes the Promise
// exactly once with Resolve or Reject; every reader blocked in Get, GetContext
// or WaitTimeout then observes the same value or error. The transition out of
// Pending happens once and is final:
//
//	Pending -> ReadyValue
//	Pending -> ReadyError
//
// Worker pools hand a Future to the submitter and keep the Promise with the
// task:
//
//	f, p := future.New[int]()
//	go func() { p.Resolve(42) }()
//	v, err := f.Get()
//
// Errors pass through unchanged, so errors.Is and errors.As work across the
// goroutine boundary. A panic recovered by the producer is reported as a
// *PanicError.
package future
