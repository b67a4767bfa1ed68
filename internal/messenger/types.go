package messenger

import "time"

// WebhookEvent is the top-level structure received from the Messenger webhook.
type WebhookEvent struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents a single page entry in the webhook payload.
type Entry struct {
	ID        string      `json:"id"`
	Time      int64       `json:"time"`
	Messaging []Messaging `json:"messaging"`
}

// Messaging represents a single messaging event.
type Messaging struct {
	Sender    Participant `json:"sender"`
	Recipient Participant `json:"recipient"`
	Timestamp int64       `json:"timestamp"`
	Message   *Message    `json:"message,omitempty"`
	Postback  *Postback   `json:"postback,omitempty"`
}

// Participant identifies a page-scoped user or the page itself.
type Participant struct {
	ID string `json:"id"`
}

// Message contains the inbound message content.
type Message struct {
	MID        string             `json:"mid"`
	Text       string             `json:"text"`
	IsEcho     bool               `json:"is_echo,omitempty"`
	QuickReply *QuickReplyPayload `json:"quick_reply,omitempty"`
}

// QuickReplyPayload is attached to a message sent by tapping a quick reply.
type QuickReplyPayload struct {
	Payload string `json:"payload"`
}

// Postback represents a postback event (button tap, Get Started).
type Postback struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// InboundEvent is one of TextMessage, QuickReplySelection or Postback.
type InboundEvent interface {
	Sender() string
	Kind() string
	isInboundEvent()
}

// TextMessage is a free-text message typed by the user.
type TextMessage struct {
	SenderID  string
	Text      string
	MessageID string
	Timestamp time.Time
}

// QuickReplySelection is a tap on one of the quick replies the bot offered.
type QuickReplySelection struct {
	SenderID string
	Payload  string
}

// PostbackEvent is a postback button tap.
type PostbackEvent struct {
	SenderID    string
	RecipientID string
	Payload     string
	Timestamp   time.Time
}

func (e TextMessage) Sender() string         { return e.SenderID }
func (e QuickReplySelection) Sender() string { return e.SenderID }
func (e PostbackEvent) Sender() string       { return e.SenderID }

func (TextMessage) Kind() string         { return "text" }
func (QuickReplySelection) Kind() string { return "quick_reply" }
func (PostbackEvent) Kind() string       { return "postback" }

func (TextMessage) isInboundEvent()         {}
func (QuickReplySelection) isInboundEvent() {}
func (PostbackEvent) isInboundEvent()       {}

// SenderAction is a transient UI signal.
type SenderAction string

const (
	SenderActionTypingOn SenderAction = "typing_on"
	SenderActionMarkSeen SenderAction = "mark_seen"
)

// QuickReply is a tappable option attached to an outbound text.
type QuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

// TextQuickReply builds a text quick reply carrying payload.
func TextQuickReply(title, payload string) QuickReply {
	return QuickReply{ContentType: "text", Title: title, Payload: payload}
}

// SendRequest is the payload sent to the Send API.
type SendRequest struct {
	Recipient     Participant  `json:"recipient"`
	MessagingType string       `json:"messaging_type,omitempty"`
	Message       *SendMessage `json:"message,omitempty"`
	SenderAction  SenderAction `json:"sender_action,omitempty"`
}

// SendMessage is the message content for outbound messages.
type SendMessage struct {
	Text         string       `json:"text,omitempty"`
	Attachment   *Attachment  `json:"attachment,omitempty"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
}

// Attachment is a media attachment.
type Attachment struct {
	Type    string            `json:"type"`
	Payload AttachmentPayload `json:"payload"`
}

// AttachmentPayload points at hosted media.
type AttachmentPayload struct {
	URL        string `json:"url"`
	IsReusable bool   `json:"is_reusable,omitempty"`
}

// SendResponse is the response from the Send API.
type SendResponse struct {
	RecipientID string    `json:"recipient_id"`
	MessageID   string    `json:"message_id"`
	Error       *APIError `json:"error,omitempty"`
}

// APIError represents an error returned by the Graph API.
type APIError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id"`
}

// UserProfile is the subset of the user profile the bot reads.
type UserProfile struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Timezone  float64   `json:"timezone"`
	Error     *APIError `json:"error,omitempty"`
}

// NamePlaceholder stands in for a display name that could not be resolved.
const NamePlaceholder = "friend"

// DisplayName returns the first name, or NamePlaceholder when unknown. Safe on nil.
func (p *UserProfile) DisplayName() string {
	if p == nil || p.FirstName == "" {
		return NamePlaceholder
	}
	return p.FirstName
}
