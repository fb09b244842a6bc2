package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/repository"
)

var _ repository.InvoiceRepository = (*invoiceRepo)(nil)

type invoiceRepo struct{ pool *pgxpool.Pool }

func NewInvoiceRepo(pool *pgxpool.Pool) *invoiceRepo {
	return &invoiceRepo{pool: pool}
}

// Money travels as text so the driver never rounds it through a float.
func (r *invoiceRepo) FindByGatewayPaymentID(ctx context.Context, tx repository.Tx, gatewayPaymentID string) (*model.Invoice, error) {
	q := `
SELECT id, subscription_id, gateway_payment_id, COALESCE(gateway_customer,''), status,
       value::text, net_value::text, COALESCE(billing_type,''), due_date, paid_at,
       COALESCE(invoice_url,''), updated_at
  FROM invoices
 WHERE gateway_payment_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", gatewayPaymentID)
	if err != nil {
		return nil, err
	}

	inv := &model.Invoice{}
	var status, value, net string
	if err := row.Scan(&inv.ID, &inv.SubscriptionID, &inv.GatewayPaymentID, &inv.GatewayCustomer, &status,
		&value, &net, &inv.BillingType, &inv.DueDate, &inv.PaidAt, &inv.InvoiceURL, &inv.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	inv.Status = model.InvoiceStatus(status)
	if inv.Value, err = decimal.NewFromString(value); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	if inv.NetValue, err = decimal.NewFromString(net); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return inv, nil
}

// Upsert checks the transition inside the statement. A concurrent insert for
// the same payment makes ON CONFLICT re-read the committed row, so the guard
// holds even when no earlier SELECT saw it.
func (r *invoiceRepo) Upsert(ctx context.Context, tx repository.Tx, inv *model.Invoice) (bool, error) {
	const q = `
INSERT INTO invoices (
  id, subscription_id, gateway_payment_id, gateway_customer, status, value, net_value,
  billing_type, due_date, paid_at, invoice_url, updated_at
) VALUES ($1,$2,$3,$4,$5,$6::numeric,$7::numeric,$8,$9,$10,$11,$12)
ON CONFLICT (gateway_payment_id) DO UPDATE SET
  subscription_id=COALESCE(EXCLUDED.subscription_id, invoices.subscription_id),
  gateway_customer=EXCLUDED.gateway_customer, status=EXCLUDED.status,
  value=EXCLUDED.value, net_value=EXCLUDED.net_value, billing_type=EXCLUDED.billing_type,
  due_date=COALESCE(EXCLUDED.due_date, invoices.due_date),
  paid_at=COALESCE(EXCLUDED.paid_at, invoices.paid_at),
  invoice_url=EXCLUDED.invoice_url, updated_at=EXCLUDED.updated_at
WHERE invoices.status = ANY($13::text[]);`

	from := inv.Status.Predecessors()
	allowed := make([]string, 0, len(from))
	for _, s := range from {
		allowed = append(allowed, string(s))
	}
	tag, err := execSQL(ctx, r.pool, tx, q,
		inv.ID, inv.SubscriptionID, inv.GatewayPaymentID, inv.GatewayCustomer, string(inv.Status),
		inv.Value.String(), inv.NetValue.String(), inv.BillingType, inv.DueDate, inv.PaidAt,
		inv.InvoiceURL, inv.UpdatedAt, allowed)
	if err != nil {
		return false, dbErr("invoice_upsert", err)
	}
	return tag.RowsAffected() == 1, nil
}
