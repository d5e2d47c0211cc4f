package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the translation module.
type Metrics struct {
	// Translation outcomes by provider
	Outcomes *prometheus.CounterVec

	// Provider call latency
	ProviderLatency *prometheus.HistogramVec

	// Input size in characters
	TextLength prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "m8translate_translation_outcomes_total",
			Help: "Translation requests by outcome and provider",
		}, []string{"outcome", "provider"}), // outcome: "success", "rate_limited", "provider_error", "rejected"

		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "m8translate_translation_provider_duration_seconds",
			Help:    "Duration of translation provider calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30},
		}, []string{"provider"}),

		TextLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "m8translate_translation_text_characters",
			Help:    "Characters submitted for translation",
			Buckets: []float64{10, 50, 100, 250, 500, 750, 1000},
		}),
	}
}

// IncrementOutcome records a translation outcome.
func (m *Metrics) IncrementOutcome(outcome, provider string) {
	if m != nil {
		m.Outcomes.WithLabelValues(outcome, provider).Inc()
	}
}

// ObserveProviderLatency records the duration of one provider call.
func (m *Metrics) ObserveProviderLatency(provider string, d time.Duration) {
	if m != nil {
		m.ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveTextLength(chars int) {
	if m != nil {
		m.TextLength.Observe(float64(chars))
	}
}
