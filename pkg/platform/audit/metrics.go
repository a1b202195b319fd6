package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RecordedTotal       *prometheus.CounterVec
	DroppedTotal        prometheus.Counter
	AppendFailuresTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		RecordedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medgate_audit_events_total",
			Help: "Audit events recorded by outcome",
		}, []string{"outcome"}),
		DroppedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medgate_audit_dropped_total",
			Help: "Audit events dropped because the inbox was full",
		}),
		AppendFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medgate_audit_append_failures_total",
			Help: "Audit sink append failures absorbed by the worker",
		}),
	}
}
