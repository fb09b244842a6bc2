//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/repository"
)

func TestInvoiceAndWebhookEventRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	invoices := NewInvoiceRepo(testPool)
	events := NewWebhookEventRepo(testPool)
	subs := NewSubscriptionRepo(testPool)

	t.Run("should upsert invoices by gateway payment id", func(t *testing.T) {
		cleanup(t)
		sub := &model.Subscription{ID: uuid.NewString(), UserID: uuid.NewString(), PlanID: "ESSENCIAL", Status: model.SubscriptionStatusPending}
		if err := subs.Save(ctx, nil, sub); err != nil {
			t.Fatal(err)
		}
		due := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
		inv := &model.Invoice{
			ID:               uuid.NewString(),
			SubscriptionID:   &sub.ID,
			GatewayPaymentID: "pay_1",
			Status:           model.InvoiceStatusPending,
			Value:            decimal.RequireFromString("497.00"),
			NetValue:         decimal.RequireFromString("482.09"),
			BillingType:      "PIX",
			DueDate:          &due,
			UpdatedAt:        time.Now(),
		}
		if written, err := invoices.Upsert(ctx, nil, inv); err != nil || !written {
			t.Fatalf("insert: written=%v err=%v", written, err)
		}

		paid := time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)
		inv.Status = model.InvoiceStatusReceived
		inv.PaidAt = &paid
		inv.SubscriptionID = nil
		inv.ID = uuid.NewString() // ignored on conflict
		if written, err := invoices.Upsert(ctx, nil, inv); err != nil || !written {
			t.Fatalf("update: written=%v err=%v", written, err)
		}

		got, err := invoices.FindByGatewayPaymentID(ctx, nil, "pay_1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != model.InvoiceStatusReceived || got.PaidAt == nil || !got.Value.Equal(decimal.RequireFromString("497")) {
			t.Errorf("invoice = %+v", got)
		}
		if got.SubscriptionID == nil || *got.SubscriptionID != sub.ID {
			t.Error("subscription link lost on update")
		}
		if !got.NetValue.Equal(decimal.RequireFromString("482.09")) {
			t.Errorf("net value = %s", got.NetValue)
		}
	})

	t.Run("should never move an invoice backwards", func(t *testing.T) {
		cleanup(t)
		inv := &model.Invoice{ID: uuid.NewString(), GatewayPaymentID: "pay_back", Status: model.InvoiceStatusReceived, UpdatedAt: time.Now()}
		if written, err := invoices.Upsert(ctx, nil, inv); err != nil || !written {
			t.Fatalf("insert: written=%v err=%v", written, err)
		}
		late := *inv
		late.ID = uuid.NewString()
		late.Status = model.InvoiceStatusPending
		if written, err := invoices.Upsert(ctx, nil, &late); err != nil || written {
			t.Fatalf("downgrade: written=%v err=%v", written, err)
		}
		got, err := invoices.FindByGatewayPaymentID(ctx, nil, "pay_back")
		if err != nil || got.Status != model.InvoiceStatusReceived {
			t.Fatalf("status = %v err=%v", got, err)
		}
	})

	t.Run("should converge when a create races a confirmation on a new payment", func(t *testing.T) {
		cleanup(t)
		confirmed := &model.Invoice{ID: uuid.NewString(), GatewayPaymentID: "pay_race", Status: model.InvoiceStatusConfirmed, UpdatedAt: time.Now()}
		created := &model.Invoice{ID: uuid.NewString(), GatewayPaymentID: "pay_race", Status: model.InvoiceStatusPending, UpdatedAt: time.Now()}

		txA, err := testPool.Begin(ctx)
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = txA.Rollback(ctx) }()
		if _, err := invoices.FindByGatewayPaymentID(ctx, txA, "pay_race"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("tx A lookup: %v", err)
		}
		if written, err := invoices.Upsert(ctx, txA, confirmed); err != nil || !written {
			t.Fatalf("tx A upsert: written=%v err=%v", written, err)
		}

		type result struct {
			written bool
			err     error
		}
		done := make(chan result, 1)
		go func() {
			txB, err := testPool.Begin(ctx)
			if err != nil {
				done <- result{err: err}
				return
			}
			defer func() { _ = txB.Rollback(ctx) }()
			// tx B cannot see A's uncommitted row, so its lookup misses too
			if _, err := invoices.FindByGatewayPaymentID(ctx, txB, "pay_race"); !errors.Is(err, domain.ErrNotFound) {
				done <- result{err: err}
				return
			}
			written, err := invoices.Upsert(ctx, txB, created) // blocks on A's insert
			if err == nil {
				err = txB.Commit(ctx)
			}
			done <- result{written, err}
		}()

		time.Sleep(200 * time.Millisecond)
		if err := txA.Commit(ctx); err != nil {
			t.Fatal(err)
		}
		res := <-done
		if res.err != nil || res.written {
			t.Fatalf("tx B: written=%v err=%v", res.written, res.err)
		}
		got, err := invoices.FindByGatewayPaymentID(ctx, nil, "pay_race")
		if err != nil || got.Status != model.InvoiceStatusConfirmed {
			t.Fatalf("final invoice = %+v err=%v", got, err)
		}
	})

	t.Run("should report unknown invoices", func(t *testing.T) {
		cleanup(t)
		if _, err := invoices.FindByGatewayPaymentID(ctx, nil, "pay_x"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("should record each delivery once", func(t *testing.T) {
		cleanup(t)
		fresh, err := events.Record(ctx, nil, "evt_1", model.EventPaymentConfirmed, "pay_1")
		if err != nil || !fresh {
			t.Fatalf("first: fresh=%v err=%v", fresh, err)
		}
		fresh, err = events.Record(ctx, nil, "evt_1", model.EventPaymentConfirmed, "pay_1")
		if err != nil || fresh {
			t.Fatalf("second: fresh=%v err=%v", fresh, err)
		}
	})

	t.Run("should forget the delivery when the transaction rolls back", func(t *testing.T) {
		cleanup(t)
		tm := NewTxManager(testPool)
		boom := errors.New("boom")
		err := tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
			if _, err := events.Record(ctx, tx, "evt_2", model.EventPaymentReceived, "pay_2"); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
		fresh, err := events.Record(ctx, nil, "evt_2", model.EventPaymentReceived, "pay_2")
		if err != nil || !fresh {
			t.Fatalf("redelivery after rollback: fresh=%v err=%v", fresh, err)
		}
	})

	t.Run("should prune deliveries older than the cutoff", func(t *testing.T) {
		cleanup(t)
		if _, err := events.Record(ctx, nil, "evt_old", model.EventPaymentCreated, "pay_3"); err != nil {
			t.Fatal(err)
		}
		if _, err := testPool.Exec(ctx, `UPDATE webhook_events SET received_at = NOW() - INTERVAL '100 days' WHERE event_id = 'evt_old'`); err != nil {
			t.Fatal(err)
		}
		if _, err := events.Record(ctx, nil, "evt_new", model.EventPaymentCreated, "pay_4"); err != nil {
			t.Fatal(err)
		}

		n, err := events.PruneBefore(ctx, nil, time.Now().Add(-90*24*time.Hour))
		if err != nil || n != 1 {
			t.Fatalf("pruned=%d err=%v", n, err)
		}
		fresh, err := events.Record(ctx, nil, "evt_new", model.EventPaymentCreated, "pay_4")
		if err != nil || fresh {
			t.Fatalf("recent delivery must survive: fresh=%v err=%v", fresh, err)
		}
	})
}
