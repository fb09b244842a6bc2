package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusPending                    InvoiceStatus = "pending"
	InvoiceStatusOverdue                    InvoiceStatus = "overdue"
	InvoiceStatusConfirmed                  InvoiceStatus = "confirmed"
	InvoiceStatusReceived                   InvoiceStatus = "received"
	InvoiceStatusChargebackRequested        InvoiceStatus = "chargeback_requested"
	InvoiceStatusChargebackDispute          InvoiceStatus = "chargeback_dispute"
	InvoiceStatusAwaitingChargebackReversal InvoiceStatus = "awaiting_chargeback_reversal"
	InvoiceStatusRefunded                   InvoiceStatus = "refunded"
	InvoiceStatusDeleted                    InvoiceStatus = "deleted"
)

// invoiceTransitions lists the statuses each status may move to. Gateway
// events can arrive late or twice; anything not listed is ignored so replays
// converge on the same final row.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusPending: {
		InvoiceStatusOverdue, InvoiceStatusConfirmed, InvoiceStatusReceived,
		InvoiceStatusChargebackRequested, InvoiceStatusRefunded, InvoiceStatusDeleted,
	},
	InvoiceStatusOverdue: {
		InvoiceStatusConfirmed, InvoiceStatusReceived, InvoiceStatusRefunded, InvoiceStatusDeleted,
	},
	InvoiceStatusConfirmed: {
		InvoiceStatusReceived, InvoiceStatusChargebackRequested, InvoiceStatusRefunded,
	},
	InvoiceStatusReceived: {
		InvoiceStatusChargebackRequested, InvoiceStatusRefunded,
	},
	InvoiceStatusChargebackRequested: {
		InvoiceStatusChargebackDispute, InvoiceStatusAwaitingChargebackReversal,
		InvoiceStatusReceived, InvoiceStatusRefunded,
	},
	InvoiceStatusChargebackDispute: {
		InvoiceStatusAwaitingChargebackReversal, InvoiceStatusReceived, InvoiceStatusRefunded,
	},
	InvoiceStatusAwaitingChargebackReversal: {
		InvoiceStatusReceived, InvoiceStatusRefunded,
	},
}

// CanAdvance reports whether an invoice in status s may move to next.
func (s InvoiceStatus) CanAdvance(next InvoiceStatus) bool {
	if s == "" {
		return next != ""
	}
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Predecessors lists every stored status from which an invoice may move to s.
func (s InvoiceStatus) Predecessors() []InvoiceStatus {
	var out []InvoiceStatus
	for from := range invoiceTransitions {
		if from.CanAdvance(s) {
			out = append(out, from)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s InvoiceStatus) IsPaid() bool {
	return s == InvoiceStatusConfirmed || s == InvoiceStatusReceived
}

// Invoice mirrors one gateway payment.
type Invoice struct {
	ID               string
	SubscriptionID   *string
	GatewayPaymentID string
	GatewayCustomer  string
	Status           InvoiceStatus
	Value            decimal.Decimal
	NetValue         decimal.Decimal
	BillingType      string
	DueDate          *time.Time
	PaidAt           *time.Time
	InvoiceURL       string
	UpdatedAt        time.Time
}
