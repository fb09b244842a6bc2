package model

import (
	"time"

	"consulting-portal/internal/domain"
)

type PaymentType string

const (
	PaymentTypeCash         PaymentType = "cash"
	PaymentTypeInstallments PaymentType = "installments"
)

// TrackingCategoryCorporate tags decisions for custom-priced plans.
const TrackingCategoryCorporate = "corporate"

// PaymentRequest is one checkout decision requested by the UI.
type PaymentRequest struct {
	PlanID       string      `json:"planId"`
	Installments int         `json:"installments,omitempty"`
	PaymentType  PaymentType `json:"paymentType,omitempty"`
	FormData     *FormData   `json:"formData,omitempty"`
	ProcessID    string      `json:"processId,omitempty"`
}

// EffectivePaymentType resolves the payment type actually used. A single
// installment always means cash; the reverse never happens.
func (r PaymentRequest) EffectivePaymentType() PaymentType {
	if r.PaymentType == PaymentTypeCash || r.Installments == 1 {
		return PaymentTypeCash
	}
	return PaymentTypeInstallments
}

// PaymentResult is always returned; Error is technical text meant for the
// user-message mapper, never for direct display.
type PaymentResult struct {
	Success      bool             `json:"success"`
	URL          string           `json:"url,omitempty"`
	IsCustomPlan bool             `json:"isCustomPlan,omitempty"`
	PaymentType  PaymentType      `json:"paymentType,omitempty"`
	ProcessID    string           `json:"processId,omitempty"`
	Error        string           `json:"error,omitempty"`
	Kind         domain.ErrorKind `json:"-"`
}

// TrackingEvent is emitted for each payment routing decision.
type TrackingEvent struct {
	PlanID      string
	PaymentType PaymentType
	Category    string
	ProcessID   string
	At          time.Time
}

// StoredPaymentState is the last result and input kept for redirect recovery.
type StoredPaymentState struct {
	Result   PaymentResult  `json:"result"`
	State    PaymentRequest `json:"state"`
	StoredAt time.Time      `json:"storedAt"`
}
