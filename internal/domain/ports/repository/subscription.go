package repository

import (
	"context"
	"time"

	"consulting-portal/internal/domain/model"
)

// SubscriptionRepository is the port for customer subscriptions.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	FindByGatewayID(ctx context.Context, tx Tx, gatewaySubscriptionID string) (*model.Subscription, error)
	// UpdateStatusIfChanged applies upd only when it differs from the stored row
	// and reports whether a row changed.
	UpdateStatusIfChanged(ctx context.Context, tx Tx, id string, upd model.SubscriptionUpdate) (bool, error)
}

// -----------------------------
// Invoices
// -----------------------------

type InvoiceRepository interface {
	FindByGatewayPaymentID(ctx context.Context, tx Tx, gatewayPaymentID string) (*model.Invoice, error)
	// Upsert inserts the invoice keyed by its gateway payment id, or moves the
	// stored row to inv.Status when InvoiceStatus.CanAdvance allows it. It
	// reports whether a row was written.
	Upsert(ctx context.Context, tx Tx, inv *model.Invoice) (bool, error)
}

// -----------------------------
// Webhook deliveries
// -----------------------------

type WebhookEventRepository interface {
	// Record stores the delivery key and reports false when it was already stored.
	Record(ctx context.Context, tx Tx, key string, event model.GatewayEventType, paymentID string) (bool, error)
	// PruneBefore deletes records received before cutoff and returns how many.
	PruneBefore(ctx context.Context, tx Tx, cutoff time.Time) (int64, error)
}
