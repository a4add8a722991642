package workerpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/taskpool/pkg/metrics"
)

// poolMetrics holds the label-bound children for one pool. A nil
// *poolMetrics records nothing.
type poolMetrics struct {
	submittedTotal prometheus.Counter
	rejectedTotal  prometheus.Counter
	completedTotal prometheus.Counter
	failedTotal    prometheus.Counter
	panickedTotal  prometheus.Counter
	duration       prometheus.Observer
	queueWait      prometheus.Observer
	size           prometheus.Gauge
	active         prometheus.Gauge
}

func newPoolMetrics(reg *metrics.Registry, name string) *poolMetrics {
	if reg == nil {
		return nil
	}
	return &poolMetrics{
		submittedTotal: reg.TasksSubmitted.WithLabelValues(name),
		rejectedTotal:  reg.TasksRejected.WithLabelValues(name),
		completedTotal: reg.TasksCompleted.WithLabelValues(name),
		failedTotal:    reg.TasksFailed.WithLabelValues(name),
		panickedTotal:  reg.TasksPanicked.WithLabelValues(name),
		duration:       reg.TaskExecutionDuration.WithLabelValues(name),
		queueWait:      reg.TaskQueueWait.WithLabelValues(name),
		size:           reg.WorkerPoolSize.WithLabelValues(name),
		active:         reg.WorkerPoolActive.WithLabelValues(name),
	}
}

func (m *poolMetrics) setSize(n int) {
	if m == nil {
		return
	}
	m.size.Set(float64(n))
}

func (m *poolMetrics) setActive(n int) {
	if m == nil {
		return
	}
	m.active.Set(float64(n))
}

func (m *poolMetrics) submitted() {
	if m == nil {
		return
	}
	m.submittedTotal.Inc()
}

func (m *poolMetrics) rejected() {
	if m == nil {
		return
	}
	m.rejectedTotal.Inc()
}

func (m *poolMetrics) taskStarted(active int, wait time.Duration) {
	if m == nil {
		return
	}
	m.active.Set(float64(active))
	m.queueWait.Observe(wait.Seconds())
}

func (m *poolMetrics) taskFinished(active int, duration time.Duration, err error, panicked bool) {
	if m == nil {
		return
	}
	m.active.Set(float64(active))
	m.duration.Observe(duration.Seconds())
	if err != nil {
		m.failedTotal.Inc()
	} else {
		m.completedTotal.Inc()
	}
	if panicked {
		m.panickedTotal.Inc()
	}
}
