/*
Package workerpool runs result-bearing tasks on a fixed set of goroutines.

A Pool owns a blocking queue (see package queue) and a fixed number of
workers. Submitting a task wraps it with a future.Promise, pushes it onto the
queue and hands the matching future.Future back to the caller. An idle worker
pops the task, runs it and resolves the Future with the value, the error, or
a *future.PanicError if the task panicked. The worker then goes back to the
queue.

Basic usage:

	pool, err := workerpool.New(4, 100) // 4 workers, 100 queued tasks
	if err != nil {
		return err
	}
	defer pool.Close()

	f, err := workerpool.Submit(pool, func(ctx context.Context) (int, error) {
		return compute(ctx)
	})
	if err != nil {
		return err
	}
	v, err := f.Get()

Backpressure:

Submit blocks while the queue is full. SubmitContext bounds that wait with a
context; the context is not passed to the task. A pool created with
queue.Unbounded capacity never blocks submitters.

Task Interface:

Submit and Go cover most uses. Work that reports its outcome on its own can
implement Task and be queued with SubmitTask:

	type Task interface {
		Invoke(ctx context.Context)
	}

The TaskFunc type adapts a plain function.

Configuration Options:

	config := workerpool.Config{
		Name:          "thumbnails",
		WorkerCount:   8,
		QueueCapacity: 1000,
		TaskTimeout:   30 * time.Second,
		Logger:        logger,
		Metrics:       metrics.NewRegistry(prometheus.DefaultRegisterer),
		OnWorkerStart: func(workerID int) error {
			return openConnection(workerID)
		},
		OnTaskComplete: func(workerID int, result workerpool.Result) {
			log.Printf("worker %d finished in %v", workerID, result.Duration)
		},
	}
	pool, err := workerpool.NewWithConfig(config)

If any OnWorkerStart returns an error, the workers already started are
stopped and joined, and NewWithConfig returns the error.

Shutdown:

Shutdown stops accepting tasks, lets the workers drain the queue, disposes
the queue and closes the returned channel. Every accepted task runs, so every
Future is resolved. A submitter blocked on a full queue when shutdown begins
receives ErrPoolClosed, as does any later submission.

ShutdownWithTimeout additionally cancels the context handed to tasks once the
timeout elapses. Tasks still in the queue are invoked with that canceled
context and are expected to return promptly.

Thread Safety:

All Pool methods and the Submit functions are safe for concurrent use. Hooks
run on worker goroutines and must be safe for concurrent use themselves.
*/
package workerpool
