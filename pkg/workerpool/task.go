package workerpool

import (
	"context"

	"github.com/vnykmshr/taskpool/pkg/future"
)

// handled is implemented by tasks that report their outcome through a
// Future. Workers use it to learn whether the task failed and to resolve the
// handle when the task panics.
type handled interface {
	Task
	run(ctx context.Context) error
	fail(err error)
}

// task binds a result-returning function to the Promise of its Future.
type task[R any] struct {
	fn      func(ctx context.Context) (R, error)
	promise *future.Promise[R]
}

func newTask[R any](fn func(ctx context.Context) (R, error), opts ...future.Option) (*task[R], *future.Future[R]) {
	f, p := future.New[R](opts...)
	return &task[R]{fn: fn, promise: p}, f
}

// Invoke implements Task.
func (t *task[R]) Invoke(ctx context.Context) {
	_ = t.run(ctx)
}

func (t *task[R]) run(ctx context.Context) error {
	v, err := t.fn(ctx)
	if err != nil {
		t.promise.Reject(err)
		return err
	}
	t.promise.Resolve(v)
	return nil
}

func (t *task[R]) fail(err error) {
	t.promise.Reject(err)
}
