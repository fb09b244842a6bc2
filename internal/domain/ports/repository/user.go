package repository

import (
	"context"

	"consulting-portal/internal/domain/model"
)

// -----------------------------
// Roles
// -----------------------------

type RoleRepository interface {
	RolesForUser(ctx context.Context, tx Tx, userID string) ([]model.Role, error)
}

// -----------------------------
// WhatsApp
// -----------------------------

type ConversationRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.WhatsAppConversation, error)
	// UpsertByPhone returns the conversation for phone, creating it when missing.
	UpsertByPhone(ctx context.Context, tx Tx, c *model.WhatsAppConversation) (*model.WhatsAppConversation, error)
	TouchLastMessage(ctx context.Context, tx Tx, id string) error
}

type MessageRepository interface {
	Save(ctx context.Context, tx Tx, m *model.WhatsAppMessage) error
}
