package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AcquisitionsTotal *prometheus.CounterVec
	ThrottledTotal    *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		AcquisitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medgate_ratelimit_acquisitions_total",
			Help: "Rate limit acquisition attempts by outcome",
		}, []string{"outcome"}),
		ThrottledTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medgate_ratelimit_throttled_total",
			Help: "Throttled acquisitions by tripped window",
		}, []string{"window"}),
	}
}

func (m *Metrics) RecordAllowed() {
	m.AcquisitionsTotal.WithLabelValues("allowed").Inc()
}

func (m *Metrics) RecordThrottled(window string) {
	m.AcquisitionsTotal.WithLabelValues("throttled").Inc()
	m.ThrottledTotal.WithLabelValues(window).Inc()
}
