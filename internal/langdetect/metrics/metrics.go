package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Detections *prometheus.CounterVec
	TooShort   prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Detections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "m8translate_langdetect_detections_total",
			Help: "Language detections by rule tier and detected language",
		}, []string{"tier", "language"}),
		TooShort: factory.NewCounter(prometheus.CounterOpts{
			Name: "m8translate_langdetect_too_short_total",
			Help: "Detection requests rejected for being below the minimum length",
		}),
	}
}

func (m *Metrics) IncrementDetection(tier, language string) {
	if m == nil {
		return
	}
	m.Detections.WithLabelValues(tier, language).Inc()
}

func (m *Metrics) IncrementTooShort() {
	if m == nil {
		return
	}
	m.TooShort.Inc()
}
