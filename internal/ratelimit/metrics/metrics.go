package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions   *prometheus.CounterVec
	TrackedKeys *prometheus.GaugeVec
	SweptKeys   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "m8translate_ratelimit_decisions_total",
			Help: "Rate limit decisions by scope and outcome",
		}, []string{"scope", "outcome"}),
		TrackedKeys: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "m8translate_ratelimit_tracked_keys",
			Help: "Current number of caller keys with a live sliding window",
		}, []string{"scope"}),
		SweptKeys: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "m8translate_ratelimit_swept_keys_total",
			Help: "Caller keys removed by the periodic sweep",
		}, []string{"scope"}),
	}
}

func (m *Metrics) IncrementDecision(scope string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if allowed {
		outcome = "allowed"
	}
	m.Decisions.WithLabelValues(scope, outcome).Inc()
}

func (m *Metrics) SetTrackedKeys(scope string, count int) {
	if m == nil {
		return
	}
	m.TrackedKeys.WithLabelValues(scope).Set(float64(count))
}

func (m *Metrics) AddSweptKeys(scope string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.SweptKeys.WithLabelValues(scope).Add(float64(count))
}
