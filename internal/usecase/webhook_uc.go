// File: internal/usecase/webhook_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/adapter"
	"consulting-portal/internal/domain/ports/repository"
	"consulting-portal/internal/format"
	"consulting-portal/internal/infra/i18n"
	"consulting-portal/internal/infra/logging"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

// WebhookUseCase reconciles payment gateway events into invoices and
// subscriptions. Deliveries may repeat or arrive out of order; applying the
// same set of events in any order converges on the same rows.
type WebhookUseCase interface {
	Handle(ctx context.Context, ev *model.GatewayEvent) (*model.WebhookOutcome, error)
}

type webhookUC struct {
	tm       repository.TransactionManager
	events   repository.WebhookEventRepository
	invoices repository.InvoiceRepository
	subs     repository.SubscriptionRepository
	locker   adapter.Locker      // optional
	notifier adapter.OpsNotifier // optional
	tr       *i18n.Translator
	log      *zerolog.Logger
	now      func() time.Time
}

func NewWebhookUseCase(
	tm repository.TransactionManager,
	events repository.WebhookEventRepository,
	invoices repository.InvoiceRepository,
	subs repository.SubscriptionRepository,
	locker adapter.Locker,
	notifier adapter.OpsNotifier,
	tr *i18n.Translator,
	logger *zerolog.Logger,
) *webhookUC {
	return &webhookUC{
		tm:       tm,
		events:   events,
		invoices: invoices,
		subs:     subs,
		locker:   locker,
		notifier: notifier,
		tr:       tr,
		log:      logger,
		now:      time.Now,
	}
}

func (u *webhookUC) Handle(ctx context.Context, ev *model.GatewayEvent) (*model.WebhookOutcome, error) {
	if ev == nil || strings.TrimSpace(string(ev.Event)) == "" {
		return nil, fmt.Errorf("%w: event type is required", domain.ErrInvalidArgument)
	}
	out := &model.WebhookOutcome{Event: ev.Event}
	if ev.Payment != nil {
		out.PaymentID = ev.Payment.ID
	}
	log := logging.With(ctx, u.log).With().Str("event", string(ev.Event)).Str("payment_id", out.PaymentID).Logger()
	defer logging.TraceDuration(&log, "WebhookUC.Handle")()

	if !ev.Event.Known() {
		log.Info().Msg("webhook: unknown event ignored")
		out.Ignored = true
		return out, nil
	}
	if ev.Payment == nil || strings.TrimSpace(ev.Payment.ID) == "" {
		return nil, fmt.Errorf("%w: payment.id is required", domain.ErrInvalidArgument)
	}

	if u.locker != nil {
		key := "webhook:" + ev.Payment.ID
		token, ok, err := u.locker.TryLock(ctx, key)
		switch {
		case err != nil:
			// the invoice upsert guards transitions in SQL
			log.Warn().Err(err).Msg("webhook: lock unavailable, continuing")
		case !ok:
			return nil, domain.ErrEventInFlight
		default:
			defer func() {
				if err := u.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
					log.Warn().Err(err).Msg("webhook: unlock failed")
				}
			}()
		}
	}

	var sub *model.Subscription
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		fresh, err := u.events.Record(ctx, tx, ev.DedupKey(), ev.Event, ev.Payment.ID)
		if err != nil {
			return fmt.Errorf("record event: %w", err)
		}
		if !fresh {
			out.Duplicate = true
			return nil
		}

		sub, err = u.findSubscription(ctx, tx, ev.Payment)
		if err != nil {
			return err
		}
		if sub == nil {
			out.SubscriptionNotFound = true
		} else {
			out.SubscriptionID = sub.ID
		}

		changed, err := u.applyInvoice(ctx, tx, ev, sub)
		if err != nil {
			return err
		}
		out.InvoiceChanged = changed

		target := ev.Event.SubscriptionStatus()
		if !changed || sub == nil || target == "" {
			return nil
		}
		upd := model.SubscriptionUpdate{Status: target}
		if target == model.SubscriptionStatusActive {
			upd.CurrentPeriodEnd = u.periodEnd(ev.Payment)
		}
		subChanged, err := u.subs.UpdateStatusIfChanged(ctx, tx, sub.ID, upd)
		if err != nil {
			return fmt.Errorf("update subscription: %w", err)
		}
		out.SubscriptionChanged = subChanged
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("webhook: processing failed")
		return nil, err
	}

	switch {
	case out.Duplicate:
		log.Info().Msg("webhook: duplicate delivery acknowledged")
	case out.SubscriptionNotFound:
		log.Warn().Str("external_reference", ev.Payment.ExternalReference).Msg("webhook: no subscription for payment")
	default:
		log.Info().Bool("invoice_changed", out.InvoiceChanged).Bool("subscription_changed", out.SubscriptionChanged).Msg("webhook: applied")
	}

	if out.InvoiceChanged && ev.Event.NeedsAlert() {
		u.alert(ctx, ev, out)
	}
	return out, nil
}

// findSubscription resolves the gateway subscription id first and the local
// id carried in externalReference second. A miss is not an error.
func (u *webhookUC) findSubscription(ctx context.Context, tx repository.Tx, p *model.GatewayPayment) (*model.Subscription, error) {
	if p.Subscription != "" {
		s, err := u.subs.FindByGatewayID(ctx, tx, p.Subscription)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find subscription by gateway id: %w", err)
		}
	}
	if ref := strings.TrimSpace(p.ExternalReference); ref != "" {
		s, err := u.subs.FindByID(ctx, tx, ref)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find subscription by reference: %w", err)
		}
	}
	return nil, nil
}

// applyInvoice upserts the invoice when the event moves it forward and
// reports whether it did. The early CanAdvance check only skips work; the
// repository re-checks against the committed row.
func (u *webhookUC) applyInvoice(ctx context.Context, tx repository.Tx, ev *model.GatewayEvent, sub *model.Subscription) (bool, error) {
	p := ev.Payment
	target := ev.Event.InvoiceStatus()

	cur, err := u.invoices.FindByGatewayPaymentID(ctx, tx, p.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("find invoice: %w", err)
	}

	var inv model.Invoice
	if cur != nil {
		if !cur.Status.CanAdvance(target) {
			return false, nil
		}
		inv = *cur
	} else {
		inv = model.Invoice{ID: uuid.NewString()}
	}

	inv.GatewayPaymentID = p.ID
	inv.GatewayCustomer = p.Customer
	inv.Status = target
	inv.Value = p.Value
	inv.NetValue = p.NetValue
	inv.BillingType = p.BillingType
	inv.InvoiceURL = p.InvoiceURL
	if due := p.DueAt(); due != nil {
		inv.DueDate = due
	}
	if target.IsPaid() {
		if paid := p.PaidAt(); paid != nil {
			inv.PaidAt = paid
		} else if inv.PaidAt == nil {
			now := u.now()
			inv.PaidAt = &now
		}
	}
	if sub != nil {
		id := sub.ID
		inv.SubscriptionID = &id
	}
	inv.UpdatedAt = u.now()

	written, err := u.invoices.Upsert(ctx, tx, &inv)
	if err != nil {
		return false, fmt.Errorf("upsert invoice: %w", err)
	}
	return written, nil
}

// periodEnd is one month after the paid installment's due date.
func (u *webhookUC) periodEnd(p *model.GatewayPayment) *time.Time {
	base := u.now()
	if due := p.DueAt(); due != nil {
		base = *due
	}
	end := base.AddDate(0, 1, 0)
	return &end
}

func (u *webhookUC) alert(ctx context.Context, ev *model.GatewayEvent, out *model.WebhookOutcome) {
	if u.notifier == nil {
		return
	}
	subID := out.SubscriptionID
	if subID == "" {
		subID = "-"
	}
	text := u.tr.T("notify.webhook_alert",
		string(ev.Event),
		ev.Payment.ID,
		format.FormatCurrency(ev.Payment.Value),
		subID,
		string(ev.Event.InvoiceStatus()),
	)
	if err := u.notifier.Notify(ctx, text); err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Msg("webhook: ops notification failed")
	}
}
