package workerpool

import (
	"context"
	"fmt"
	"time"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/future"
)

// Shutdown initiates a graceful shutdown of the pool. New submissions are
// rejected, queued tasks still run, and the returned channel closes once
// every worker has exited and the queue has been disposed. Repeated calls
// return the same channel.
func (p *Pool) Shutdown() <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.isShutdown = true
		p.mu.Unlock()

		p.queue.Close()

		go func() {
			p.workerWg.Wait()
			p.disposeErr = p.queue.Dispose()
			p.cancelTasks()
			p.metrics.setActive(0)
			p.logger.Debug("pool stopped",
				"completed", p.totalCompleted.Load(),
				"failed", p.totalFailed.Load())
			close(p.done)
		}()
	})

	return p.done
}

// ShutdownWithTimeout is like Shutdown, but once timeout elapses the context
// handed to running and still-queued tasks is canceled. Those tasks are still
// invoked, so every Future is resolved.
func (p *Pool) ShutdownWithTimeout(timeout time.Duration) <-chan struct{} {
	done := p.Shutdown()

	p.clock.AfterFunc(timeout, func() {
		select {
		case <-done:
			return
		default:
		}
		p.logger.Warn("shutdown timed out, canceling remaining tasks",
			"timeout", timeout,
			"queued", p.queue.Len(),
			"active", p.ActiveWorkers())
		p.cancelTasks()
	}, "workerpool", "ShutdownWithTimeout")

	return done
}

// Close shuts the pool down and waits for it. It returns the queue's
// disposal error, which is nil unless tasks were left behind.
func (p *Pool) Close() error {
	<-p.Shutdown()
	return p.disposeErr
}

// ID returns the unique identifier assigned to this pool instance.
func (p *Pool) ID() string {
	return p.id
}

// Name returns the configured pool name.
func (p *Pool) Name() string {
	return p.config.Name
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return p.config.WorkerCount
}

// QueueSize returns the current number of queued tasks waiting for execution.
func (p *Pool) QueueSize() int {
	return p.queue.Len()
}

// QueueCapacity returns the queue capacity, or queue.Unbounded.
func (p *Pool) QueueCapacity() int {
	return p.queue.Cap()
}

// ActiveWorkers returns the number of workers currently executing tasks.
func (p *Pool) ActiveWorkers() int {
	return int(p.activeWorkers.Load())
}

// TotalSubmitted returns the total number of tasks accepted by the pool.
func (p *Pool) TotalSubmitted() int64 {
	return p.totalSubmitted.Load()
}

// TotalCompleted returns the number of tasks that finished, successfully or not.
func (p *Pool) TotalCompleted() int64 {
	return p.totalCompleted.Load()
}

// TotalFailed returns the number of tasks that returned an error or panicked.
func (p *Pool) TotalFailed() int64 {
	return p.totalFailed.Load()
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	closed := p.isShutdown
	p.mu.RUnlock()

	qs := p.queue.Stats()
	return Stats{
		ID:             p.id,
		Name:           p.config.Name,
		Workers:        p.config.WorkerCount,
		ActiveWorkers:  p.ActiveWorkers(),
		QueueSize:      qs.Len,
		QueueCapacity:  qs.Cap,
		TotalSubmitted: p.totalSubmitted.Load(),
		TotalCompleted: p.totalCompleted.Load(),
		TotalFailed:    p.totalFailed.Load(),
		TotalPanicked:  p.totalPanicked.Load(),
		Closed:         closed,
		Queue:          qs,
	}
}

// runWorker is the main loop for a worker. It reports the outcome of
// OnWorkerStart on ready, then executes tasks until the queue is closed and
// empty.
func (p *Pool) runWorker(id int, ready chan<- error) {
	defer p.workerWg.Done()

	if p.config.OnWorkerStart != nil {
		if err := p.config.OnWorkerStart(id); err != nil {
			ready <- tperrors.NewOperationError("workerpool", "start_worker", err).
				WithContext(fmt.Sprintf("worker %d", id))
			return
		}
	}
	ready <- nil

	p.logger.Debug("worker started", "worker", id)
	defer func() {
		if p.config.OnWorkerStop != nil {
			p.config.OnWorkerStop(id)
		}
		p.logger.Debug("worker stopped", "worker", id)
	}()

	for {
		// Pop only fails once the queue is closed and empty.
		j, err := p.queue.Pop(context.Background())
		if err != nil {
			return
		}
		p.execute(id, j)
	}
}

// execute runs one task and records its outcome.
func (p *Pool) execute(workerID int, j job) {
	start := p.clock.Now()
	wait := start.Sub(j.enqueued)
	p.metrics.taskStarted(int(p.activeWorkers.Add(1)), wait)

	if p.config.OnTaskStart != nil {
		p.config.OnTaskStart(workerID, j.task)
	}

	ctx := p.taskCtx
	if p.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.TaskTimeout)
		defer cancel()
	}

	panicked, err := p.invoke(ctx, j.task)
	duration := p.clock.Since(start)

	p.totalCompleted.Add(1)
	if err != nil {
		p.totalFailed.Add(1)
	}
	if panicked {
		p.totalPanicked.Add(1)
	}
	p.metrics.taskFinished(int(p.activeWorkers.Add(-1)), duration, err, panicked)

	if p.config.OnTaskComplete != nil {
		p.config.OnTaskComplete(workerID, Result{
			Task:      j.task,
			Error:     err,
			Panicked:  panicked,
			Duration:  duration,
			QueueWait: wait,
			WorkerID:  workerID,
		})
	}
}

// invoke calls the task, converting a panic into a *future.PanicError that
// also resolves the task's Future.
func (p *Pool) invoke(ctx context.Context, t Task) (panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe := future.NewPanicError(r)
			panicked, err = true, pe
			if h, ok := t.(handled); ok {
				h.fail(pe)
			}
			p.handlePanic(t, pe)
		}
	}()

	if h, ok := t.(handled); ok {
		return false, h.run(ctx)
	}
	t.Invoke(ctx)
	return false, nil
}

func (p *Pool) handlePanic(t Task, pe *future.PanicError) {
	if p.config.PanicHandler != nil {
		p.config.PanicHandler(t, pe.Value)
		return
	}
	p.logger.Error("task panicked",
		"panic", fmt.Sprint(pe.Value),
		"stack", string(pe.Stack))
}
