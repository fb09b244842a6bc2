package model

import "time"

type MessageDirection string

const (
	MessageDirectionOutbound MessageDirection = "outbound"
	MessageDirectionInbound  MessageDirection = "inbound"
)

// WhatsAppConversation is one thread per customer phone number.
type WhatsAppConversation struct {
	ID            string
	Phone         string
	ContactName   string
	LastMessageAt time.Time
	CreatedAt     time.Time
}

// WhatsAppMessage mirrors a message sent through the messaging gateway.
type WhatsAppMessage struct {
	ID               string
	ConversationID   string
	GatewayMessageID string
	Direction        MessageDirection
	Type             string
	Body             string
	Status           string
	CreatedAt        time.Time
}

// OutboundMessage is the request accepted by the messaging function.
type OutboundMessage struct {
	To             string `json:"to" validate:"required"`
	Message        string `json:"message" validate:"required"`
	Type           string `json:"type,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}

// SendResult is returned after a successful send.
type SendResult struct {
	Success        bool   `json:"success"`
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
}
