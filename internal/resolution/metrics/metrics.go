package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks resolution traffic.
type Metrics struct {
	// Results by kind and outcome ("ok" or "fault")
	Results *prometheus.CounterVec

	// Requests a transport refused
	Refused prometheus.Counter

	Latency  *prometheus.HistogramVec
	InFlight prometheus.Gauge

	// Remote resolver circuit state (1 = open)
	CircuitOpen prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Results: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_resolution_results_total",
			Help: "Resolution results by kind and outcome",
		}, []string{"kind", "outcome"}),

		Refused: factory.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_resolution_refused_total",
			Help: "Resolution requests refused by the transport",
		}),

		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soulbound_resolution_duration_seconds",
			Help:    "Time from dequeue to result",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"kind"}),

		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "soulbound_resolution_in_flight",
			Help: "Resolution requests currently being processed",
		}),

		CircuitOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "soulbound_resolution_circuit_open",
			Help: "Whether the remote identity circuit is open",
		}),
	}
}

func (m *Metrics) ObserveResult(kind string, failed bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "fault"
	}
	m.Results.WithLabelValues(kind, outcome).Inc()
	m.Latency.WithLabelValues(kind).Observe(seconds)
}

func (m *Metrics) IncRefused() {
	if m == nil {
		return
	}
	m.Refused.Inc()
}

func (m *Metrics) IncInFlight() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

func (m *Metrics) DecInFlight() {
	if m == nil {
		return
	}
	m.InFlight.Dec()
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitOpen.Set(1)
		return
	}
	m.CircuitOpen.Set(0)
}
