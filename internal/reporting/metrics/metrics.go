package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the reporting aggregator.
type Metrics struct {
	// Reports generated, by report kind
	ReportsGenerated *prometheus.CounterVec

	// Violations appended to the log
	ViolationsRecorded prometheus.Counter
}

// New creates a Metrics instance with all reporting metrics registered.
func New() *Metrics {
	return &Metrics{
		ReportsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_reporting_reports_generated_total",
			Help: "Reports generated, labeled by report kind",
		}, []string{"kind"}),

		ViolationsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_reporting_violations_recorded_total",
			Help: "Compliance violations appended to the audit log",
		}),
	}
}

// IncReport records one generated report.
func (m *Metrics) IncReport(kind string) {
	if m != nil {
		m.ReportsGenerated.WithLabelValues(kind).Inc()
	}
}

// IncViolation records one appended violation.
func (m *Metrics) IncViolation() {
	if m != nil {
		m.ViolationsRecorded.Inc()
	}
}
