package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type GatewayEventType string

const (
	EventPaymentCreated                    GatewayEventType = "PAYMENT_CREATED"
	EventPaymentConfirmed                  GatewayEventType = "PAYMENT_CONFIRMED"
	EventPaymentReceived                   GatewayEventType = "PAYMENT_RECEIVED"
	EventPaymentOverdue                    GatewayEventType = "PAYMENT_OVERDUE"
	EventPaymentDeleted                    GatewayEventType = "PAYMENT_DELETED"
	EventPaymentRefunded                   GatewayEventType = "PAYMENT_REFUNDED"
	EventPaymentReceivedInCash             GatewayEventType = "PAYMENT_RECEIVED_IN_CASH"
	EventPaymentChargebackRequested        GatewayEventType = "PAYMENT_CHARGEBACK_REQUESTED"
	EventPaymentChargebackDispute          GatewayEventType = "PAYMENT_CHARGEBACK_DISPUTE"
	EventPaymentAwaitingChargebackReversal GatewayEventType = "PAYMENT_AWAITING_CHARGEBACK_REVERSAL"
)

type eventEffect struct {
	invoice      InvoiceStatus
	subscription SubscriptionStatus // empty: the subscription is left alone
	alert        bool
}

var eventEffects = map[GatewayEventType]eventEffect{
	EventPaymentCreated:                    {invoice: InvoiceStatusPending},
	EventPaymentConfirmed:                  {invoice: InvoiceStatusConfirmed, subscription: SubscriptionStatusActive},
	EventPaymentReceived:                   {invoice: InvoiceStatusReceived, subscription: SubscriptionStatusActive},
	EventPaymentReceivedInCash:             {invoice: InvoiceStatusReceived, subscription: SubscriptionStatusActive},
	EventPaymentOverdue:                    {invoice: InvoiceStatusOverdue, subscription: SubscriptionStatusOverdue, alert: true},
	EventPaymentDeleted:                    {invoice: InvoiceStatusDeleted, alert: true},
	EventPaymentRefunded:                   {invoice: InvoiceStatusRefunded, subscription: SubscriptionStatusCancelled, alert: true},
	EventPaymentChargebackRequested:        {invoice: InvoiceStatusChargebackRequested, subscription: SubscriptionStatusSuspended, alert: true},
	EventPaymentChargebackDispute:          {invoice: InvoiceStatusChargebackDispute, subscription: SubscriptionStatusSuspended, alert: true},
	EventPaymentAwaitingChargebackReversal: {invoice: InvoiceStatusAwaitingChargebackReversal, subscription: SubscriptionStatusSuspended, alert: true},
}

// Known reports whether this service handles the event type.
func (t GatewayEventType) Known() bool {
	_, ok := eventEffects[t]
	return ok
}

func (t GatewayEventType) InvoiceStatus() InvoiceStatus { return eventEffects[t].invoice }

func (t GatewayEventType) SubscriptionStatus() SubscriptionStatus {
	return eventEffects[t].subscription
}

// NeedsAlert reports whether ops should hear about a transition caused by this event.
func (t GatewayEventType) NeedsAlert() bool { return eventEffects[t].alert }

// GatewayPayment is the payment object inside a gateway event.
type GatewayPayment struct {
	ID                string          `json:"id"`
	Customer          string          `json:"customer"`
	Subscription      string          `json:"subscription"`
	Installment       string          `json:"installment"`
	Value             decimal.Decimal `json:"value"`
	NetValue          decimal.Decimal `json:"netValue"`
	Status            string          `json:"status"`
	BillingType       string          `json:"billingType"`
	DueDate           string          `json:"dueDate"`
	PaymentDate       string          `json:"paymentDate"`
	ClientPaymentDate string          `json:"clientPaymentDate"`
	InvoiceURL        string          `json:"invoiceUrl"`
	ExternalReference string          `json:"externalReference"`
	Description       string          `json:"description"`
}

const gatewayDateLayout = "2006-01-02"

func parseGatewayDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(gatewayDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func (p *GatewayPayment) DueAt() *time.Time { return parseGatewayDate(p.DueDate) }

// PaidAt prefers the settlement date and falls back to the client payment date.
func (p *GatewayPayment) PaidAt() *time.Time {
	if t := parseGatewayDate(p.PaymentDate); t != nil {
		return t
	}
	return parseGatewayDate(p.ClientPaymentDate)
}

// GatewayEvent is the envelope posted by the payment gateway.
type GatewayEvent struct {
	ID          string           `json:"id"`
	Event       GatewayEventType `json:"event"`
	DateCreated string           `json:"dateCreated"`
	Payment     *GatewayPayment  `json:"payment"`
}

// DedupKey identifies a delivery. Older gateway versions omit the event id,
// in which case event type and payment id stand in for it.
func (e *GatewayEvent) DedupKey() string {
	if e.ID != "" {
		return e.ID
	}
	if e.Payment == nil {
		return string(e.Event)
	}
	return string(e.Event) + ":" + e.Payment.ID
}

// WebhookOutcome summarizes what one delivery changed.
type WebhookOutcome struct {
	Event                GatewayEventType `json:"event"`
	PaymentID            string           `json:"paymentId,omitempty"`
	Ignored              bool             `json:"ignored,omitempty"`
	Duplicate            bool             `json:"duplicate,omitempty"`
	InvoiceChanged       bool             `json:"invoiceChanged"`
	SubscriptionID       string           `json:"subscriptionId,omitempty"`
	SubscriptionChanged  bool             `json:"subscriptionChanged"`
	SubscriptionNotFound bool             `json:"subscriptionNotFound,omitempty"`
}
