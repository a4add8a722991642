/*
Package taskpool provides a bounded blocking queue and a fixed-size worker
pool for running result-bearing tasks in one process.

Queueing (pkg/queue):
  - Bounded FIFO queue that blocks producers while full and consumers while empty
  - Unbounded variant that only blocks consumers
  - Pluggable lock policy, close/drain/dispose lifecycle

Execution (pkg/workerpool, pkg/future):
  - workerpool: fixed worker set fed by a queue, typed Submit returning a Future
  - future: single-assignment result handle with blocking and bounded waits

Observability (pkg/metrics, pkg/report):
  - metrics: Prometheus instrumentation for queues and pools
  - report: scheduled statistics snapshots to slog and Redis

Example usage:

	import (
		"github.com/vnykmshr/taskpool/pkg/workerpool"
	)

	pool, _ := workerpool.New(4, 100) // 4 workers, queue 100
	defer pool.Close()

	f, _ := workerpool.Submit(pool, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	v, err := f.Get()

See individual package documentation for detailed usage and examples.
*/
package taskpool
