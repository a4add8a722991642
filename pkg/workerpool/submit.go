package workerpool

import (
	"context"
	"errors"
	"fmt"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/future"
	"github.com/vnykmshr/taskpool/pkg/queue"
)

// ErrPoolClosed is returned for submissions made after shutdown began,
// including submitters that were waiting on a full queue at that moment.
var ErrPoolClosed = fmt.Errorf("workerpool: %w", tperrors.ErrClosed)

// Submit queues fn and returns a Future for its result. It blocks while the
// pool's queue is full.
func Submit[R any](p *Pool, fn func(ctx context.Context) (R, error)) (*future.Future[R], error) {
	return SubmitContext(context.Background(), p, fn)
}

// SubmitContext is like Submit but gives up waiting for queue space when ctx
// ends. ctx does not reach the task; tasks receive the pool's task context.
func SubmitContext[R any](ctx context.Context, p *Pool, fn func(ctx context.Context) (R, error)) (*future.Future[R], error) {
	if fn == nil {
		return nil, nilTaskError()
	}

	t, f := newTask(fn, future.WithClock(p.clock))
	if err := p.SubmitTask(ctx, t); err != nil {
		return nil, err
	}
	return f, nil
}

// Go queues fn, which produces no value. The returned Future reports its error.
func Go(p *Pool, fn func(ctx context.Context) error) (*future.Future[struct{}], error) {
	if fn == nil {
		return nil, nilTaskError()
	}
	return Submit(p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
}

// SubmitTask queues a task that reports its outcome on its own. It blocks
// while the queue is full, until ctx ends or the pool shuts down.
func (p *Pool) SubmitTask(ctx context.Context, t Task) error {
	if t == nil {
		return nilTaskError()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p.mu.RLock()
	isShutdown := p.isShutdown
	p.mu.RUnlock()

	if isShutdown {
		p.metrics.rejected()
		return ErrPoolClosed
	}

	// Check a pre-canceled context before queuing so the outcome does not
	// depend on whether a slot happens to be open.
	if err := ctx.Err(); err != nil {
		p.metrics.rejected()
		return fmt.Errorf("workerpool: submit: %w", err)
	}

	p.totalSubmitted.Add(1)
	if err := p.queue.Push(ctx, job{task: t, enqueued: p.clock.Now()}); err != nil {
		p.totalSubmitted.Add(-1)
		p.metrics.rejected()
		if errors.Is(err, queue.ErrClosed) {
			return ErrPoolClosed
		}
		return fmt.Errorf("workerpool: submit: %w", err)
	}
	p.metrics.submitted()
	return nil
}

func nilTaskError() error {
	return tperrors.NewValidationError("workerpool", "task", nil, "cannot be nil")
}
