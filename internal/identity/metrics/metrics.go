package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the identity registry.
type Metrics struct {
	// Operations by name and outcome code ("ok" on success)
	Operations *prometheus.CounterVec

	// Live souls after the last committed change
	LiveSouls prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_identity_operations_total",
			Help: "Identity registry operations by name and outcome",
		}, []string{"op", "outcome"}),

		LiveSouls: factory.NewGauge(prometheus.GaugeOpts{
			Name: "soulbound_identity_live_souls",
			Help: "Number of claimed souls",
		}),
	}
}

// IncOperation records one operation outcome.
func (m *Metrics) IncOperation(op, outcome string) {
	if m != nil {
		m.Operations.WithLabelValues(op, outcome).Inc()
	}
}

func (m *Metrics) SetLiveSouls(n int) {
	if m != nil {
		m.LiveSouls.Set(float64(n))
	}
}
