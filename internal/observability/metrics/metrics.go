package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters/histograms for the engagement engine.
type EngineMetrics struct {
	messagesTotal    *prometheus.CounterVec
	providerAttempts *prometheus.CounterVec
	fallbackTotal    prometheus.Counter
	reportsTotal     *prometheus.CounterVec
	replyLatency     prometheus.Histogram
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scamtrap",
			Subsystem: "engine",
			Name:      "messages_total",
			Help:      "Total inbound messages processed",
		}, []string{"flagged"}),
		providerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scamtrap",
			Subsystem: "engine",
			Name:      "provider_attempts_total",
			Help:      "Total reply-generation attempts per provider",
		}, []string{"provider", "status"}),
		fallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scamtrap",
			Subsystem: "engine",
			Name:      "persona_fallback_total",
			Help:      "Replies served from the static persona library",
		}),
		reportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scamtrap",
			Subsystem: "engine",
			Name:      "reports_total",
			Help:      "Evidence reports dispatched to the collector",
		}, []string{"status"}),
		replyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scamtrap",
			Subsystem: "engine",
			Name:      "reply_latency_seconds",
			Help:      "Latency of the synchronous reply path",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.providerAttempts, m.fallbackTotal, m.reportsTotal, m.replyLatency)
	return m
}

func (m *EngineMetrics) ObserveMessage(flagged bool) {
	if m == nil {
		return
	}
	label := "false"
	if flagged {
		label = "true"
	}
	m.messagesTotal.WithLabelValues(label).Inc()
}

func (m *EngineMetrics) ObserveProviderAttempt(provider, status string) {
	if m == nil {
		return
	}
	m.providerAttempts.WithLabelValues(provider, status).Inc()
}

func (m *EngineMetrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.fallbackTotal.Inc()
}

func (m *EngineMetrics) ObserveReport(status string) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(status).Inc()
}

func (m *EngineMetrics) ObserveReplyLatency(seconds float64) {
	if m == nil {
		return
	}
	m.replyLatency.Observe(seconds)
}
