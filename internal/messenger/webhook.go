package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/waterbot/internal/observability/metrics"
	"github.com/wolfman30/waterbot/pkg/logging"
)

var webhookTracer = otel.Tracer("waterbot.internal.messenger.webhook")

const (
	maxWebhookBody        = 1 << 20
	defaultWebhookTimeout = 20 * time.Second
)

// EventHandler consumes parsed inbound events. Implementations must not panic on
// unknown payloads and report no errors; failures are theirs to log.
type EventHandler interface {
	Handle(ctx context.Context, event InboundEvent)
}

// WebhookHandler serves GET/POST /callback.
type WebhookHandler struct {
	verifyToken string
	appSecret   string
	events      EventHandler
	metrics     *metrics.BotMetrics
	logger      *logging.Logger
	timeout     time.Duration
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(verifyToken, appSecret string, events EventHandler, m *metrics.BotMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		events:      events,
		metrics:     m,
		logger:      logger,
		timeout:     defaultWebhookTimeout,
	}
}

// SetTimeout bounds how long one POST may spend dispatching events.
func (h *WebhookHandler) SetTimeout(d time.Duration) {
	if d > 0 {
		h.timeout = d
	}
}

// HandleVerification handles the GET subscription challenge.
func (h *WebhookHandler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { h.metrics.ObserveWebhookLatency(http.MethodGet, time.Since(start).Seconds()) }()

	q := r.URL.Query()
	challenge, err := VerifyChallenge(h.verifyToken, q.Get(ModeParam), q.Get(VerifyTokenParam), q.Get(ChallengeParam))
	if err != nil {
		h.logger.Warn("webhook verification failed", "error", err, "mode", q.Get(ModeParam))
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	h.logger.Debug("webhook verified", "mode", q.Get(ModeParam))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, challenge)
}

// HandleCallback verifies the payload signature and dispatches every event in it.
// It answers 200 once all events were handed to the EventHandler; send failures
// are never surfaced to the platform.
func (h *WebhookHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { h.metrics.ObserveWebhookLatency(http.MethodPost, time.Since(start).Seconds()) }()

	ctx, span := webhookTracer.Start(r.Context(), "messenger.webhook.callback")
	defer span.End()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		span.RecordError(err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		signature = r.Header.Get(LegacySignatureHeader)
	}
	if !VerifySignature(h.appSecret, body, signature) {
		span.RecordError(ErrVerification)
		h.metrics.ObserveWebhookEvent("callback", "forbidden")
		h.logger.Warn("processing of callback payload failed", "error", ErrVerification)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		span.RecordError(err)
		h.metrics.ObserveWebhookEvent("callback", "malformed")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	events := ParseWebhookEvent(event)
	span.SetAttributes(
		attribute.String("waterbot.webhook.object", event.Object),
		attribute.Int("waterbot.webhook.events", len(events)),
	)

	// Detach from the request so a platform-side disconnect doesn't abort sends.
	dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()
	for _, ev := range events {
		h.dispatch(dispatchCtx, ev)
	}

	w.WriteHeader(http.StatusOK)
}

// HandleMe is a liveness probe for the callback route.
func (h *WebhookHandler) HandleMe(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "Hey!")
}

func (h *WebhookHandler) dispatch(ctx context.Context, ev InboundEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			h.metrics.ObserveWebhookEvent(ev.Kind(), "panic")
			h.logger.Error("event handler panicked", "kind", ev.Kind(), "sender_id", ev.Sender(), "panic", fmt.Sprint(rec))
		}
	}()
	if h.events == nil {
		h.logger.Warn("no event handler configured, dropping event", "kind", ev.Kind())
		return
	}
	h.events.Handle(ctx, ev)
	h.metrics.ObserveWebhookEvent(ev.Kind(), "ok")
}

// ParseWebhookEvent extracts inbound events from a webhook payload. Echoes of
// the page's own messages and attachment-only messages are skipped.
func ParseWebhookEvent(event WebhookEvent) []InboundEvent {
	var out []InboundEvent

	for _, entry := range event.Entry {
		for _, m := range entry.Messaging {
			ts := time.UnixMilli(m.Timestamp)
			switch {
			case m.Postback != nil:
				out = append(out, PostbackEvent{
					SenderID:    m.Sender.ID,
					RecipientID: m.Recipient.ID,
					Payload:     m.Postback.Payload,
					Timestamp:   ts,
				})
			case m.Message == nil || m.Message.IsEcho:
				continue
			case m.Message.QuickReply != nil:
				out = append(out, QuickReplySelection{
					SenderID: m.Sender.ID,
					Payload:  m.Message.QuickReply.Payload,
				})
			case m.Message.Text != "":
				out = append(out, TextMessage{
					SenderID:  m.Sender.ID,
					Text:      m.Message.Text,
					MessageID: m.Message.MID,
					Timestamp: ts,
				})
			}
		}
	}

	return out
}
