// Package metrics provides Prometheus instrumentation for taskpool components.
//
// A Registry groups the counters, gauges and histograms used by queues and
// worker pools. Components accept an optional *Registry and skip all
// instrumentation when it is nil, so metrics stay strictly opt-in.
//
// # Quick Start
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewRegistry(reg)
//
//	pool, err := workerpool.NewWithConfig(workerpool.Config{
//		Name:        "resize",
//		WorkerCount: 4,
//		Metrics:     m,
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Available Metrics
//
// ## Queue Metrics (label: queue_name)
//
//   - taskpool_queue_pushes_total
//   - taskpool_queue_pops_total
//   - taskpool_queue_blocked_pushes_total: pushes that had to wait for an open slot
//   - taskpool_queue_depth
//   - taskpool_queue_capacity: 0 for unbounded queues
//
// ## Worker Pool Metrics (label: pool_name)
//
//   - taskpool_workerpool_tasks_submitted_total
//   - taskpool_workerpool_tasks_rejected_total
//   - taskpool_workerpool_tasks_completed_total
//   - taskpool_workerpool_tasks_failed_total
//   - taskpool_workerpool_tasks_panicked_total
//   - taskpool_workerpool_task_duration_seconds
//   - taskpool_workerpool_task_queue_wait_seconds
//   - taskpool_workerpool_size
//   - taskpool_workerpool_active_workers
//
// There is no package-level default registry. Each Registry is bound to the
// prometheus.Registerer it was built with, and registering two Registries on
// the same registerer panics with a duplicate-collector error.
package metrics
