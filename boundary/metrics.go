package boundary

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts run outcomes by terminal status.
type Metrics struct {
	runsTotal  *prometheus.CounterVec
	runsActive prometheus.Gauge
}

// NewMetrics creates and registers the boundary metrics. Pass a dedicated
// registry in tests to avoid duplicate-registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "localmind",
			Name:      "runs_total",
			Help:      "Completed runs by terminal status.",
		}, []string{"status"}),
		runsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "localmind",
			Name:      "runs_active",
			Help:      "Runs currently occupying a worker slot.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runsTotal, m.runsActive)
	}
	return m
}

func (m *Metrics) runStarted() {
	if m == nil {
		return
	}
	m.runsActive.Inc()
}

func (m *Metrics) runFinished(status string) {
	if m == nil {
		return
	}
	m.runsActive.Dec()
	m.runsTotal.WithLabelValues(status).Inc()
}

// recordOutcome counts a run that never started (cancelled while pending).
func (m *Metrics) recordOutcome(status string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
}
