// Package conversation turns inbound Messenger events into outbound action
// sequences and reminder-frequency updates.
package conversation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/waterbot/internal/messenger"
	"github.com/wolfman30/waterbot/internal/outbound"
	"github.com/wolfman30/waterbot/internal/users"
	"github.com/wolfman30/waterbot/pkg/logging"
)

var engineTracer = otel.Tracer("waterbot.internal.conversation")

// Decision is the outcome of one inbound event.
type Decision struct {
	Actions []outbound.Action
	// Frequency is the reminder frequency to persist, nil when unchanged.
	Frequency *int
}

// ActionExecutor delivers an ordered action sequence.
type ActionExecutor interface {
	Execute(ctx context.Context, actions []outbound.Action) error
}

type route func(ctx context.Context, senderID string) Decision

// Engine dispatches inbound events through fixed token tables.
type Engine struct {
	store    users.Store
	profiles messenger.ProfileLookup
	executor ActionExecutor
	logger   *logging.Logger
	pick     func(n int) int

	textRoutes    map[string]route
	payloadRoutes map[string]route
}

var _ messenger.EventHandler = (*Engine)(nil)

// Option customizes an Engine.
type Option func(*Engine)

// WithPicker replaces the random greeting selection.
func WithPicker(pick func(n int) int) Option {
	return func(e *Engine) {
		if pick != nil {
			e.pick = pick
		}
	}
}

// NewEngine creates the conversation engine.
func NewEngine(store users.Store, profiles messenger.ProfileLookup, executor ActionExecutor, logger *logging.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		store:    store,
		profiles: profiles,
		executor: executor,
		logger:   logger,
		pick:     rand.IntN,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.textRoutes = map[string]route{
		"hi":    e.greet,
		"hello": e.greet,
		"hey":   e.greet,
		"start": e.getStarted,
	}

	e.payloadRoutes = map[string]route{
		PayloadGetStarted: e.getStarted,
		PayloadStart:      e.start,
		PayloadReminders1: e.setFrequency(1),
		PayloadReminders2: e.setFrequency(2),
		PayloadReminders3: e.setFrequency(3),
	}
	for _, p := range []string{PayloadCups1To2, PayloadCups3To5, PayloadCups6AndMore, PayloadCupsDontCount} {
		e.payloadRoutes[p] = e.cupsADay(p)
	}
	for _, p := range []string{PayloadDone1To2, PayloadDone3To5, PayloadDone6To8, PayloadDone8} {
		e.payloadRoutes[p] = e.progress
	}

	return e
}

// Decide maps an event to its actions without sending or persisting anything.
func (e *Engine) Decide(ctx context.Context, event messenger.InboundEvent) Decision {
	switch ev := event.(type) {
	case messenger.TextMessage:
		if r, ok := e.textRoutes[strings.ToLower(ev.Text)]; ok {
			return r(ctx, ev.SenderID)
		}
		return Decision{Actions: textReply(ev.SenderID, fmt.Sprintf(MessageDefaultAnswer, e.displayName(ctx, ev.SenderID)))}

	case messenger.QuickReplySelection:
		if r, ok := e.payloadRoutes[ev.Payload]; ok {
			return r(ctx, ev.SenderID)
		}
		e.logger.Warn("unknown quick reply payload", "sender_id", ev.SenderID, "payload", ev.Payload)
		return Decision{Actions: []outbound.Action{
			outbound.SendSenderAction{RecipientID: ev.SenderID, Action: messenger.SenderActionMarkSeen},
		}}

	case messenger.PostbackEvent:
		if ev.Payload == PayloadGetStarted {
			return e.getStarted(ctx, ev.SenderID)
		}
		e.logger.Info("ignoring postback", "sender_id", ev.SenderID, "payload", ev.Payload)
		return Decision{}
	}

	e.logger.Warn("unsupported inbound event", "kind", event.Kind())
	return Decision{}
}

// Handle registers the sender, decides, persists a frequency change and sends
// the actions. Failures are logged; the webhook still acknowledges the event.
func (e *Engine) Handle(ctx context.Context, event messenger.InboundEvent) {
	ctx, span := engineTracer.Start(ctx, "conversation.handle")
	defer span.End()
	span.SetAttributes(attribute.String("waterbot.event.kind", event.Kind()))

	if sender := event.Sender(); sender != "" {
		if err := e.store.Register(ctx, sender); err != nil {
			span.RecordError(err)
			e.logger.Warn("failed to register user", "sender_id", sender, "error", err)
		}
	}

	decision := e.Decide(ctx, event)

	if decision.Frequency != nil {
		if err := e.store.Save(ctx, event.Sender(), *decision.Frequency); err != nil {
			span.RecordError(err)
			e.logger.Error("failed to save reminder frequency",
				"sender_id", event.Sender(),
				"frequency", *decision.Frequency,
				"error", err,
			)
			return
		}
		e.logger.Info("reminder frequency saved", "sender_id", event.Sender(), "frequency", *decision.Frequency)
	}

	if len(decision.Actions) == 0 {
		return
	}
	if err := e.executor.Execute(ctx, decision.Actions); err != nil {
		span.RecordError(err)
		e.logger.Error("failed to deliver reply", "sender_id", event.Sender(), "kind", event.Kind(), "error", err)
	}
}

func (e *Engine) greet(_ context.Context, senderID string) Decision {
	return Decision{Actions: textReply(senderID, Greetings[e.pick(len(Greetings))])}
}

func (e *Engine) getStarted(ctx context.Context, senderID string) Decision {
	return Decision{Actions: getStartedSequence(senderID, e.displayName(ctx, senderID))}
}

func (e *Engine) start(_ context.Context, senderID string) Decision {
	return Decision{Actions: startSequence(senderID)}
}

func (e *Engine) cupsADay(payload string) route {
	return func(_ context.Context, senderID string) Decision {
		return Decision{Actions: cupsADaySequence(senderID, payload)}
	}
}

func (e *Engine) setFrequency(frequency int) route {
	return func(_ context.Context, senderID string) Decision {
		f := frequency
		return Decision{Actions: textReply(senderID, MessageReminderSaved), Frequency: &f}
	}
}

func (e *Engine) progress(_ context.Context, senderID string) Decision {
	return Decision{Actions: textReply(senderID, MessageProgressSaved)}
}

// displayName never fails; lookup errors degrade to the placeholder.
func (e *Engine) displayName(ctx context.Context, senderID string) string {
	if e.profiles == nil {
		return messenger.NamePlaceholder
	}
	profile, err := e.profiles.UserProfile(ctx, senderID)
	if err != nil {
		e.logger.Warn("profile lookup failed", "sender_id", senderID, "error", err)
		return messenger.NamePlaceholder
	}
	return profile.DisplayName()
}
