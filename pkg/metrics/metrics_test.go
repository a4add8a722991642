package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryWithConfig_NamespaceAndLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistryWithConfig(Config{
		Registry:  reg,
		Namespace: "demo",
		Labels:    prometheus.Labels{"env": "test"},
	})

	m.TasksSubmitted.WithLabelValues("p1").Inc()
	m.WorkerPoolSize.WithLabelValues("p1").Set(4)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
		for _, metric := range mf.GetMetric() {
			var env string
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "env" {
					env = lp.GetValue()
				}
			}
			assert.Equal(t, "test", env, "constant label missing on %s", mf.GetName())
		}
	}
	assert.Contains(t, names, "demo_workerpool_tasks_submitted_total")
	assert.Contains(t, names, "demo_workerpool_size")
}

func TestNewRegistry_DefaultNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistry(reg)
	m.QueueBlockedPushes.WithLabelValues("q").Inc()

	expected := `
# HELP taskpool_queue_blocked_pushes_total Total number of pushes that waited for an open slot
# TYPE taskpool_queue_blocked_pushes_total counter
taskpool_queue_blocked_pushes_total{queue_name="q"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "taskpool_queue_blocked_pushes_total")
	assert.NoError(t, err)
}

func TestNewRegistry_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRegistry(reg)

	assert.Panics(t, func() { NewRegistry(reg) })
}
