package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "soulbound/pkg/platform/audit"
)

type Metrics struct {
	Routed     *prometheus.CounterVec
	Failed     *prometheus.CounterVec
	SampledOut prometheus.Counter
	Shed       prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Routed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_audit_routed_total",
			Help: "Audit events handed to their category sink",
		}, []string{"category"}),
		Failed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_audit_failed_total",
			Help: "Audit events whose sink returned an error",
		}, []string{"category"}),
		SampledOut: f.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_audit_ops_sampled_out_total",
			Help: "Operations audit events dropped by sampling",
		}),
		Shed: f.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_audit_ops_shed_total",
			Help: "Operations audit events dropped while the sink circuit was open",
		}),
	}
}

func (m *Metrics) IncRouted(c audit.EventCategory) {
	if m == nil {
		return
	}
	m.Routed.WithLabelValues(string(c)).Inc()
}

func (m *Metrics) IncFailed(c audit.EventCategory) {
	if m == nil {
		return
	}
	m.Failed.WithLabelValues(string(c)).Inc()
}

func (m *Metrics) IncSampledOut() {
	if m == nil {
		return
	}
	m.SampledOut.Inc()
}

func (m *Metrics) IncShed() {
	if m == nil {
		return
	}
	m.Shed.Inc()
}
