package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/repository"
)

var (
	_ repository.ConversationRepository = (*conversationRepo)(nil)
	_ repository.MessageRepository      = (*messageRepo)(nil)
)

// -----------------------------
// Conversations
// -----------------------------

type conversationRepo struct{ pool *pgxpool.Pool }

func NewConversationRepo(pool *pgxpool.Pool) *conversationRepo {
	return &conversationRepo{pool: pool}
}

const conversationColumns = `id, phone, COALESCE(contact_name,''), last_message_at, created_at`

func (r *conversationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.WhatsAppConversation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ` + conversationColumns + ` FROM whatsapp_conversations WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

// UpsertByPhone relies on the unique phone index, so two senders racing on a
// new number end up in the same row.
func (r *conversationRepo) UpsertByPhone(ctx context.Context, tx repository.Tx, c *model.WhatsAppConversation) (*model.WhatsAppConversation, error) {
	const q = `
INSERT INTO whatsapp_conversations (id, phone, contact_name, last_message_at, created_at)
VALUES ($1,$2,NULLIF($3,''),$4,$5)
ON CONFLICT (phone) DO UPDATE SET
  contact_name=COALESCE(EXCLUDED.contact_name, whatsapp_conversations.contact_name)
RETURNING ` + conversationColumns + `;`
	return r.queryOne(ctx, tx, q, c.ID, c.Phone, c.ContactName, c.LastMessageAt, c.CreatedAt)
}

func (r *conversationRepo) TouchLastMessage(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE whatsapp_conversations SET last_message_at=NOW() WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return dbErr("conversation_touch", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *conversationRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.WhatsAppConversation, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	c := &model.WhatsAppConversation{}
	if err := row.Scan(&c.ID, &c.Phone, &c.ContactName, &c.LastMessageAt, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

// -----------------------------
// Messages
// -----------------------------

type messageRepo struct{ pool *pgxpool.Pool }

func NewMessageRepo(pool *pgxpool.Pool) *messageRepo {
	return &messageRepo{pool: pool}
}

func (r *messageRepo) Save(ctx context.Context, tx repository.Tx, m *model.WhatsAppMessage) error {
	const q = `
INSERT INTO whatsapp_messages (
  id, conversation_id, gateway_message_id, direction, type, body, status, created_at
) VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7,$8);`

	_, err := execSQL(ctx, r.pool, tx, q, m.ID, m.ConversationID, m.GatewayMessageID, string(m.Direction), m.Type, m.Body, m.Status, m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return dbErr("message_save", err)
	}
	return nil
}

// ListByConversation returns the newest limit messages, newest first.
func (r *messageRepo) ListByConversation(ctx context.Context, tx repository.Tx, conversationID string, limit int) ([]*model.WhatsAppMessage, error) {
	const q = `
SELECT id, conversation_id, COALESCE(gateway_message_id,''), direction, type, body, status, created_at
  FROM whatsapp_messages
 WHERE conversation_id=$1
 ORDER BY created_at DESC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, conversationID, limit)
	if err != nil {
		return nil, dbErr("message_list", err)
	}
	defer rows.Close()

	var out []*model.WhatsAppMessage
	for rows.Next() {
		m := &model.WhatsAppMessage{}
		var dir string
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.GatewayMessageID, &dir, &m.Type, &m.Body, &m.Status, &m.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		m.Direction = model.MessageDirection(dir)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
