package metrics

import "github.com/prometheus/client_golang/prometheus"

// BotMetrics exposes counters/histograms for webhook, outbound and reminder flows.
type BotMetrics struct {
	webhookEvents  *prometheus.CounterVec
	outboundTotal  *prometheus.CounterVec
	remindersTotal *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterbot",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Inbound webhook events by kind and outcome",
		}, []string{"kind", "status"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterbot",
			Subsystem: "messenger",
			Name:      "outbound_total",
			Help:      "Outbound Send API calls by action and outcome",
		}, []string{"action", "status"}),
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterbot",
			Subsystem: "reminders",
			Name:      "deliveries_total",
			Help:      "Reminder deliveries by reminder and outcome",
		}, []string{"reminder", "status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "waterbot",
			Subsystem: "webhook",
			Name:      "latency_seconds",
			Help:      "Latency of webhook request handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.webhookEvents, m.outboundTotal, m.remindersTotal, m.webhookLatency)
	return m
}

func (m *BotMetrics) ObserveWebhookEvent(kind, status string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(kind, status).Inc()
}

func (m *BotMetrics) ObserveOutbound(action string, err error) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(action, statusLabel(err)).Inc()
}

func (m *BotMetrics) ObserveReminder(reminder, status string) {
	if m == nil {
		return
	}
	m.remindersTotal.WithLabelValues(reminder, status).Inc()
}

func (m *BotMetrics) ObserveWebhookLatency(method string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(method).Observe(seconds)
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
