// Package outbound describes the messages the bot pushes to users and executes
// them in order against the Messenger Send API.
package outbound

import "github.com/wolfman30/waterbot/internal/messenger"

// Action is one outbound step. The set of implementations is closed.
type Action interface {
	Recipient() string
	Kind() string
	isAction()
}

// SendText sends a text message with optional quick replies.
type SendText struct {
	RecipientID  string
	Text         string
	QuickReplies []messenger.QuickReply
}

// SendImage sends a reusable image attachment.
type SendImage struct {
	RecipientID string
	ImageURL    string
}

// SendSenderAction sends a typing indicator or read receipt.
type SendSenderAction struct {
	RecipientID string
	Action      messenger.SenderAction
}

func (a SendText) Recipient() string         { return a.RecipientID }
func (a SendImage) Recipient() string        { return a.RecipientID }
func (a SendSenderAction) Recipient() string { return a.RecipientID }

func (SendText) Kind() string         { return "send_text" }
func (SendImage) Kind() string        { return "send_image" }
func (SendSenderAction) Kind() string { return "sender_action" }

func (SendText) isAction()         {}
func (SendImage) isAction()        {}
func (SendSenderAction) isAction() {}
