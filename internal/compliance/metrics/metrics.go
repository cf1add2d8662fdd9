package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the compliance evaluator.
type Metrics struct {
	// Per-module verdicts
	ModuleVerdict *prometheus.CounterVec

	// Aggregate outcomes of full evaluations
	EvaluationOutcome *prometheus.CounterVec

	// Full evaluation latency
	EvaluateLatency prometheus.Histogram
}

// New creates a Metrics instance with all compliance metrics registered.
func New() *Metrics {
	return &Metrics{
		ModuleVerdict: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_compliance_module_verdicts_total",
			Help: "Per-module transfer verdicts",
		}, []string{"module", "verdict"}), // verdict: "allow", "deny"

		EvaluationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_compliance_evaluations_total",
			Help: "Aggregate compliance evaluation outcomes",
		}, []string{"outcome"}), // outcome: "allowed", "rejected", "error"

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tokengate_compliance_evaluate_duration_seconds",
			Help:    "Duration of a full compliance evaluation across all bound modules",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}
}

// IncVerdict records one module's vote.
func (m *Metrics) IncVerdict(module, verdict string) {
	if m != nil {
		m.ModuleVerdict.WithLabelValues(module, verdict).Inc()
	}
}

// IncOutcome records the aggregate evaluation result.
func (m *Metrics) IncOutcome(outcome string) {
	if m != nil {
		m.EvaluationOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveEvaluateLatency records the full evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
