package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gridfsm/gridfsm/internal/ir"
)

// Prometheus is a Recorder exporting the engine's counters as Prometheus
// metrics: state visits, transitions by event tag, and ignored events.
// Labels carry the display name when one is supplied, the bare index
// otherwise.
type Prometheus struct {
	stateVisits *prometheus.CounterVec
	transitions *prometheus.CounterVec
	ignored     *prometheus.CounterVec

	stateName func(ir.StateID) string
	eventName func(int) string
}

// PrometheusOption configures a Prometheus recorder.
type PrometheusOption func(*Prometheus)

// WithMetricNames supplies display-name lookups for the state and event
// label values.
func WithMetricNames(stateName func(ir.StateID) string, eventName func(int) string) PrometheusOption {
	return func(p *Prometheus) {
		p.stateName = stateName
		p.eventName = eventName
	}
}

// NewPrometheus creates a recorder registered with reg. The namespace
// prefixes the metric names so several machines can coexist in one
// registry.
func NewPrometheus(reg prometheus.Registerer, namespace string, opts ...PrometheusOption) *Prometheus {
	factory := promauto.With(reg)
	p := &Prometheus{
		stateVisits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fsm_state_visits_total",
			Help:      "Number of times each state was entered.",
		}, []string{"state"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fsm_transitions_total",
			Help:      "Number of transitions by triggering event tag.",
		}, []string{"event"}),
		ignored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fsm_ignored_events_total",
			Help:      "Number of events ignored because they were not allowed in the current state.",
		}, []string{"event"}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.stateName == nil {
		p.stateName = func(st ir.StateID) string { return strconv.Itoa(int(st)) }
	}
	if p.eventName == nil {
		p.eventName = func(tag int) string { return strconv.Itoa(tag) }
	}
	return p
}

// InitCounters implements the Recorder contract. Label sets are created
// lazily by client_golang, so there is nothing to size here.
func (p *Prometheus) InitCounters(stateCount, eventCount int) {}

// RecordStart implements the Recorder contract.
func (p *Prometheus) RecordStart(st ir.StateID) {
	p.stateVisits.WithLabelValues(p.stateName(st)).Inc()
}

// RecordTransition implements the Recorder contract.
func (p *Prometheus) RecordTransition(st ir.StateID, eventTag int) {
	p.stateVisits.WithLabelValues(p.stateName(st)).Inc()
	p.transitions.WithLabelValues(p.eventName(eventTag)).Inc()
}

// RecordIgnored implements the Recorder contract.
func (p *Prometheus) RecordIgnored(ev ir.EventID) {
	p.ignored.WithLabelValues(p.eventName(int(ev))).Inc()
}
