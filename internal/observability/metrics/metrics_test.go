package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBotMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBotMetrics(reg)

	m.ObserveWebhookEvent("quick_reply", "ok")
	m.ObserveOutbound("send_text", nil)
	m.ObserveOutbound("send_text", errors.New("boom"))
	m.ObserveReminder("afternoon", "sent")
	m.ObserveWebhookLatency("POST", 0.2)

	if got := testutil.ToFloat64(m.webhookEvents.WithLabelValues("quick_reply", "ok")); got != 1 {
		t.Fatalf("webhook events = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.outboundTotal.WithLabelValues("send_text", "error")); got != 1 {
		t.Fatalf("outbound errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.outboundTotal.WithLabelValues("send_text", "ok")); got != 1 {
		t.Fatalf("outbound ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.remindersTotal.WithLabelValues("afternoon", "sent")); got != 1 {
		t.Fatalf("reminders = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.webhookLatency); n != 1 {
		t.Fatalf("latency series = %d, want 1", n)
	}
}

func TestNilBotMetricsIsSafe(t *testing.T) {
	var m *BotMetrics
	m.ObserveWebhookEvent("text", "ok")
	m.ObserveOutbound("send_image", nil)
	m.ObserveReminder("morning", "failed")
	m.ObserveWebhookLatency("GET", 1)
}
