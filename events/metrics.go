package events

import (
	"github.com/c360studio/semstreams/metric"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusOK      = "ok"
	statusError   = "error"
	statusIgnored = "ignored"
)

// Metrics counts handled notifications. A nil *Metrics records nothing.
type Metrics struct {
	events *prometheus.CounterVec // by operation and status (ok/error/ignored)
}

// NewMetrics creates the event metrics and registers them with registry.
// A nil registry disables metrics.
func NewMetrics(registry *metric.MetricsRegistry) (*Metrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalogrdf",
			Name:      "events_total",
			Help:      "Catalog notifications handled",
		}, []string{"operation", "status"}),
	}

	if err := registry.RegisterCounterVec("events", "events_total", m.events); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) record(operation, status string) {
	if m == nil {
		return
	}
	if operation == "" {
		operation = "unknown"
	}
	m.events.WithLabelValues(operation, status).Inc()
}
