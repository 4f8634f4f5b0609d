package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instrumentation of chapter generation.
type Metrics struct {
	generations       *prometheus.CounterVec
	eligibilityChecks *prometheus.CounterVec
	upstreamCalls     *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process wide metrics registered on the default registry.
func Get() *Metrics {
	once.Do(func() {
		instance = New(prometheus.DefaultRegisterer)
	})
	return instance
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chapterfox",
				Name:      "generations_total",
				Help:      "Chapter generation attempts by outcome kind",
			},
			[]string{"outcome"},
		),
		eligibilityChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chapterfox",
				Name:      "eligibility_checks_total",
				Help:      "Eligibility decisions by result and plan",
			},
			[]string{"result", "plan"},
		),
		upstreamCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chapterfox",
				Name:      "upstream_calls_total",
				Help:      "Calls to external services by service and status",
			},
			[]string{"service", "status"},
		),
	}

	reg.MustRegister(m.generations, m.eligibilityChecks, m.upstreamCalls)
	return m
}

// RecordGeneration counts one pipeline run. outcome is "success" or a
// failure kind.
func (m *Metrics) RecordGeneration(outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
}

// RecordEligibility counts one eligibility decision.
func (m *Metrics) RecordEligibility(eligible bool, plan string) {
	if m == nil {
		return
	}
	result := "denied"
	if eligible {
		result = "allowed"
	}
	if plan == "" {
		plan = "unknown"
	}
	m.eligibilityChecks.WithLabelValues(result, plan).Inc()
}

// RecordUpstream counts one external call. err == nil counts as "ok".
func (m *Metrics) RecordUpstream(service string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.upstreamCalls.WithLabelValues(service, status).Inc()
}

// GenerationsCounter exposes the generation counter vector.
func (m *Metrics) GenerationsCounter() *prometheus.CounterVec {
	return m.generations
}
