package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected    *prometheus.CounterVec
	Degraded    prometheus.Counter
	StoreErrors prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_ratelimit_rejected_total",
			Help: "Requests rejected by the rate limiter by class",
		}, []string{"class"}),
		Degraded: factory.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_ratelimit_degraded_checks_total",
			Help: "Checks answered by the in-memory fallback",
		}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_ratelimit_store_errors_total",
			Help: "Errors returned by the primary rate limit store",
		}),
	}
}

func (m *Metrics) IncRejected(class string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(class).Inc()
}

func (m *Metrics) IncDegraded() {
	if m == nil {
		return
	}
	m.Degraded.Inc()
}

func (m *Metrics) IncStoreErrors() {
	if m == nil {
		return
	}
	m.StoreErrors.Inc()
}
