package queue

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/taskpool/pkg/metrics"
)

// queueMetrics holds the label-bound children for one queue. A nil
// *queueMetrics records nothing.
type queueMetrics struct {
	pushes   prometheus.Counter
	pops     prometheus.Counter
	blocked  prometheus.Counter
	depth    prometheus.Gauge
	capacity prometheus.Gauge
}

func newQueueMetrics(reg *metrics.Registry, name string) *queueMetrics {
	if reg == nil {
		return nil
	}
	return &queueMetrics{
		pushes:   reg.QueuePushes.WithLabelValues(name),
		pops:     reg.QueuePops.WithLabelValues(name),
		blocked:  reg.QueueBlockedPushes.WithLabelValues(name),
		depth:    reg.QueueDepth.WithLabelValues(name),
		capacity: reg.QueueCapacity.WithLabelValues(name),
	}
}

func (m *queueMetrics) setCapacity(c int) {
	if m == nil {
		return
	}
	m.capacity.Set(float64(c))
}

func (m *queueMetrics) push(depth int) {
	if m == nil {
		return
	}
	m.pushes.Inc()
	m.depth.Set(float64(depth))
}

func (m *queueMetrics) pop(depth int) {
	if m == nil {
		return
	}
	m.pops.Inc()
	m.depth.Set(float64(depth))
}

func (m *queueMetrics) blockedPush() {
	if m == nil {
		return
	}
	m.blocked.Inc()
}
