package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for queues and worker pools.
type Registry struct {
	// Queue metrics
	QueuePushes        *prometheus.CounterVec
	QueuePops          *prometheus.CounterVec
	QueueBlockedPushes *prometheus.CounterVec
	QueueDepth         *prometheus.GaugeVec
	QueueCapacity      *prometheus.GaugeVec

	// Worker pool metrics
	TasksSubmitted        *prometheus.CounterVec
	TasksRejected         *prometheus.CounterVec
	TasksCompleted        *prometheus.CounterVec
	TasksFailed           *prometheus.CounterVec
	TasksPanicked         *prometheus.CounterVec
	TaskExecutionDuration *prometheus.HistogramVec
	TaskQueueWait         *prometheus.HistogramVec
	WorkerPoolSize        *prometheus.GaugeVec
	WorkerPoolActive      *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer
// and the default namespace.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Registry: reg})
}

// NewRegistryWithConfig creates a registry honoring the namespace and constant
// labels in config. Registering twice against the same registerer panics, as
// with any promauto factory.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	factory := promauto.With(reg)

	counter := func(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.Labels,
		}, labels)
	}
	gauge := func(subsystem, name, help string, labels ...string) *prometheus.GaugeVec {
		return factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.Labels,
		}, labels)
	}
	histogram := func(subsystem, name, help string, labels ...string) *prometheus.HistogramVec {
		return factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			Buckets:     prometheus.DefBuckets,
			ConstLabels: config.Labels,
		}, labels)
	}

	return &Registry{
		QueuePushes:        counter("queue", "pushes_total", "Total number of items pushed", "queue_name"),
		QueuePops:          counter("queue", "pops_total", "Total number of items popped", "queue_name"),
		QueueBlockedPushes: counter("queue", "blocked_pushes_total", "Total number of pushes that waited for an open slot", "queue_name"),
		QueueDepth:         gauge("queue", "depth", "Number of items currently held", "queue_name"),
		QueueCapacity:      gauge("queue", "capacity", "Fixed queue capacity (0 for unbounded)", "queue_name"),

		TasksSubmitted:        counter("workerpool", "tasks_submitted_total", "Total number of tasks accepted by the pool", "pool_name"),
		TasksRejected:         counter("workerpool", "tasks_rejected_total", "Total number of submissions rejected", "pool_name"),
		TasksCompleted:        counter("workerpool", "tasks_completed_total", "Total number of tasks completed successfully", "pool_name"),
		TasksFailed:           counter("workerpool", "tasks_failed_total", "Total number of tasks that returned an error or panicked", "pool_name"),
		TasksPanicked:         counter("workerpool", "tasks_panicked_total", "Total number of tasks that panicked", "pool_name"),
		TaskExecutionDuration: histogram("workerpool", "task_duration_seconds", "Time spent executing tasks", "pool_name"),
		TaskQueueWait:         histogram("workerpool", "task_queue_wait_seconds", "Time tasks spent queued before a worker picked them up", "pool_name"),
		WorkerPoolSize:        gauge("workerpool", "size", "Number of workers in the pool", "pool_name"),
		WorkerPoolActive:      gauge("workerpool", "active_workers", "Number of workers currently executing a task", "pool_name"),
	}
}
