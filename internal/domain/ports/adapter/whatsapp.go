package adapter

import "context"

// WhatsAppGateway sends messages through the messaging provider's REST API.
type WhatsAppGateway interface {
	Name() string
	// SendText delivers text to a normalized number and returns the provider message id.
	SendText(ctx context.Context, number, text string) (messageID string, err error)
}
