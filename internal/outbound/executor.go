package outbound

import (
	"context"
	"fmt"

	"github.com/wolfman30/waterbot/internal/messenger"
	"github.com/wolfman30/waterbot/internal/observability/metrics"
	"github.com/wolfman30/waterbot/pkg/logging"
)

// Sender is the subset of the Messenger client used to deliver actions.
type Sender interface {
	SendText(ctx context.Context, recipientID, text string, replies []messenger.QuickReply) (*messenger.SendResponse, error)
	SendImage(ctx context.Context, recipientID, imageURL string) (*messenger.SendResponse, error)
	SendSenderAction(ctx context.Context, recipientID string, action messenger.SenderAction) (*messenger.SendResponse, error)
}

var _ Sender = (*messenger.Client)(nil)

// Executor delivers action sequences in order.
type Executor struct {
	sender  Sender
	metrics *metrics.BotMetrics
	logger  *logging.Logger
}

// NewExecutor creates an executor. metrics may be nil.
func NewExecutor(sender Sender, m *metrics.BotMetrics, logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Executor{sender: sender, metrics: m, logger: logger}
}

// Execute sends actions one by one and stops at the first failure, so a user
// never receives a later step without the earlier ones.
func (e *Executor) Execute(ctx context.Context, actions []Action) error {
	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("outbound: execute: %w", err)
		}
		err := e.send(ctx, action)
		e.metrics.ObserveOutbound(action.Kind(), err)
		if err != nil {
			e.logger.Warn("outbound action failed",
				"kind", action.Kind(),
				"recipient_id", action.Recipient(),
				"step", i,
				"remaining", len(actions)-i-1,
				"error", err,
			)
			return fmt.Errorf("outbound: %s step %d: %w", action.Kind(), i, err)
		}
	}
	return nil
}

func (e *Executor) send(ctx context.Context, action Action) error {
	var err error
	switch a := action.(type) {
	case SendText:
		_, err = e.sender.SendText(ctx, a.RecipientID, a.Text, a.QuickReplies)
	case SendImage:
		_, err = e.sender.SendImage(ctx, a.RecipientID, a.ImageURL)
	case SendSenderAction:
		_, err = e.sender.SendSenderAction(ctx, a.RecipientID, a.Action)
	default:
		err = fmt.Errorf("unsupported action %T", action)
	}
	return err
}
