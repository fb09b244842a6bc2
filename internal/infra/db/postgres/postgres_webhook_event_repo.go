package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/repository"
)

var _ repository.WebhookEventRepository = (*webhookEventRepo)(nil)

type webhookEventRepo struct{ pool *pgxpool.Pool }

func NewWebhookEventRepo(pool *pgxpool.Pool) *webhookEventRepo {
	return &webhookEventRepo{pool: pool}
}

func (r *webhookEventRepo) Record(ctx context.Context, tx repository.Tx, key string, event model.GatewayEventType, paymentID string) (bool, error) {
	const q = `
INSERT INTO webhook_events (event_id, event, payment_id, received_at)
VALUES ($1,$2,$3,NOW())
ON CONFLICT (event_id) DO NOTHING;`

	tag, err := execSQL(ctx, r.pool, tx, q, key, string(event), paymentID)
	if err != nil {
		return false, dbErr("webhook_event_record", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *webhookEventRepo) PruneBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM webhook_events WHERE received_at < $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, dbErr("webhook_event_prune", err)
	}
	return tag.RowsAffected(), nil
}
