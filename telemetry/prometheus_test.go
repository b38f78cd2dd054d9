package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/gridfsm/gridfsm/internal/ir"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")
	p.InitCounters(3, 2)

	p.RecordStart(0)
	p.RecordTransition(1, 0)
	p.RecordTransition(1, 2)
	p.RecordIgnored(1)

	assert.Equal(t, float64(1), testutil.ToFloat64(p.stateVisits.WithLabelValues("0")))
	assert.Equal(t, float64(2), testutil.ToFloat64(p.stateVisits.WithLabelValues("1")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.transitions.WithLabelValues("0")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.transitions.WithLabelValues("2")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.ignored.WithLabelValues("1")))
}

func TestPrometheusMetricNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "grid",
		WithMetricNames(
			func(st ir.StateID) string { return "st" },
			func(tag int) string { return "ev" },
		))

	p.RecordTransition(1, 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(p.stateVisits.WithLabelValues("st")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.transitions.WithLabelValues("ev")))
	assert.Equal(t, 2, testutil.CollectAndCount(reg))
}

func TestPrometheusNamespacesCoexist(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewPrometheus(reg, "machine_a")
	b := NewPrometheus(reg, "machine_b")

	a.RecordStart(0)
	b.RecordStart(0)

	assert.Equal(t, float64(1), testutil.ToFloat64(a.stateVisits.WithLabelValues("0")))
	assert.Equal(t, float64(1), testutil.ToFloat64(b.stateVisits.WithLabelValues("0")))
}
