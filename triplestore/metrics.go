package triplestore

import (
	"time"

	"github.com/c360studio/semstreams/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts store submissions. A nil *Metrics records nothing.
type Metrics struct {
	submissions *prometheus.CounterVec   // by kind and status (ok/error/skipped)
	duration    *prometheus.HistogramVec // by kind
}

// NewMetrics creates the store metrics and registers them with registry.
// A nil registry disables metrics.
func NewMetrics(registry *metric.MetricsRegistry) (*Metrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalogrdf",
			Subsystem: "triplestore",
			Name:      "submissions_total",
			Help:      "Update statements submitted to the triple store",
		}, []string{"kind", "status"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catalogrdf",
			Subsystem: "triplestore",
			Name:      "submission_duration_seconds",
			Help:      "Round trip time of triple store update submissions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}

	if err := registry.RegisterCounterVec("triplestore", "submissions_total", m.submissions); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec("triplestore", "submission_duration", m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) recordSubmission(kind Kind, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(string(kind), status).Inc()
	if status != statusSkipped {
		m.duration.WithLabelValues(string(kind)).Observe(d.Seconds())
	}
}

const (
	statusOK      = "ok"
	statusError   = "error"
	statusSkipped = "skipped"
)
