package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	DecisionsTotal   *prometheus.CounterVec
	TransitionsTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		DecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medgate_gateway_decisions_total",
			Help: "Pipeline traversals by action, outcome and refusal reason",
		}, []string{"action", "outcome", "reason"}),
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medgate_gateway_operation_transitions_total",
			Help: "Operation state transitions by target status",
		}, []string{"status"}),
	}
}
