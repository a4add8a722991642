package future

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
)

// State is the resolution state of a Future.
type State int32

const (
	// Pending means the task has not finished yet.
	Pending State = iota

	// ReadyValue means the task finished and produced a value.
	ReadyValue

	// ReadyError means the task failed; the error is available from Get.
	ReadyError

	// resolving is the brief internal window between winning the transition
	// and publishing the result. It is reported as Pending.
	resolving
)

func (s State) String() string {
	switch s {
	case Pending, resolving:
		return "pending"
	case ReadyValue:
		return "ready"
	case ReadyError:
		return "failed"
	default:
		return "unknown"
	}
}

// Future is the read side of an eventually-available result. It is shared
// between the submitter and exactly one producer, which completes it through
// the matching Promise.
type Future[R any] struct {
	state atomic.Int32
	done  chan struct{}
	value R
	err   error
	clock quartz.Clock
}

// Promise is the write side of a Future. Only the first Resolve or Reject
// takes effect.
type Promise[R any] struct {
	f *Future[R]
}

// Option configures a Future.
type Option func(*options)

type options struct {
	clock quartz.Clock
}

// WithClock sets the clock used by WaitTimeout.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// New creates a pending Future and the Promise that completes it.
func New[R any](opts ...Option) (*Future[R], *Promise[R]) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = quartz.NewReal()
	}

	f := &Future[R]{
		done:  make(chan struct{}),
		clock: o.clock,
	}
	return f, &Promise[R]{f: f}
}

// Resolved returns a Future already completed with v.
func Resolved[R any](v R) *Future[R] {
	f, p := New[R]()
	p.Resolve(v)
	return f
}

// Failed returns a Future already completed with err.
func Failed[R any](err error) *Future[R] {
	f, p := New[R]()
	p.Reject(err)
	return f
}

// Resolve completes the Future with v. It reports whether this call
// performed the transition.
func (p *Promise[R]) Resolve(v R) bool {
	return p.f.complete(v, nil, ReadyValue)
}

// Reject completes the Future with err. A nil err is replaced by
// ErrNilRejection so the Future never reports failure without a cause.
func (p *Promise[R]) Reject(err error) bool {
	if err == nil {
		err = ErrNilRejection
	}
	var zero R
	return p.f.complete(zero, err, ReadyError)
}

// Future returns the read side bound to this Promise.
func (p *Promise[R]) Future() *Future[R] {
	return p.f
}

func (f *Future[R]) complete(v R, err error, final State) bool {
	if !f.state.CompareAndSwap(int32(Pending), int32(resolving)) {
		return false
	}
	f.value = v
	f.err = err
	f.state.Store(int32(final))
	close(f.done)
	return true
}

// Done returns a channel that is closed once the Future is completed.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// State returns the current state.
func (f *Future[R]) State() State {
	s := State(f.state.Load())
	if s == resolving {
		return Pending
	}
	return s
}

// Ready reports whether the Future has reached a terminal state.
func (f *Future[R]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Get blocks until the Future is completed and returns its value or error.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.value, f.err
}

// GetContext is like Get but gives up when ctx is done. Giving up does not
// affect the task; a later Get still observes the result.
func (f *Future[R]) GetContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// WaitTimeout is like Get but gives up after d and returns ErrTimeout.
func (f *Future[R]) WaitTimeout(d time.Duration) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}

	timer := f.clock.NewTimer(d, "future", "WaitTimeout")
	defer timer.Stop()

	select {
	case <-f.done:
		return f.value, f.err
	case <-timer.C:
		var zero R
		return zero, ErrTimeout
	}
}
