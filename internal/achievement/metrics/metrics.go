package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the achievement registry.
type Metrics struct {
	// Submitted two-phase requests by op
	Submitted *prometheus.CounterVec

	// Terminal outcomes by op and result ("committed" or an error code)
	Outcomes *prometheus.CounterVec

	// Requests waiting on a resolution result after the last change
	Pending prometheus.Gauge

	// Results for unknown tokens (replays and duplicates)
	IgnoredResults prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Submitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_achievement_requests_submitted_total",
			Help: "Achievement requests waiting on identity resolution, by op",
		}, []string{"op"}),

		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_achievement_outcomes_total",
			Help: "Achievement request outcomes by op and result",
		}, []string{"op", "result"}),

		Pending: factory.NewGauge(prometheus.GaugeOpts{
			Name: "soulbound_achievement_pending_requests",
			Help: "Achievement requests currently suspended",
		}),

		IgnoredResults: factory.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_achievement_ignored_results_total",
			Help: "Resolution results that matched no pending request",
		}),
	}
}

func (m *Metrics) IncSubmitted(op string) {
	if m != nil {
		m.Submitted.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) IncOutcome(op, result string) {
	if m != nil {
		m.Outcomes.WithLabelValues(op, result).Inc()
	}
}

func (m *Metrics) SetPending(n int) {
	if m != nil {
		m.Pending.Set(float64(n))
	}
}

func (m *Metrics) IncIgnored() {
	if m != nil {
		m.IgnoredResults.Inc()
	}
}
