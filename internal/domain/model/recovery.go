package model

import "time"

// RecoveryWindow is how long a checkout snapshot may be resumed.
const RecoveryWindow = 30 * time.Minute

// FormData are the registration fields captured during checkout.
type FormData struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	TaxID    string `json:"cpf" validate:"required"`
}

// CheckoutRecoveryState is the single snapshot of an in-flight checkout.
// Optional fields are pointers so a partial save can be told apart from a zero value.
type CheckoutRecoveryState struct {
	Timestamp      time.Time    `json:"timestamp"`
	PlanID         string       `json:"planId,omitempty"`
	Installments   *int         `json:"installments,omitempty"`
	PaymentType    *PaymentType `json:"paymentType,omitempty"`
	ProcessID      string       `json:"processId,omitempty"`
	PaymentLink    string       `json:"paymentLink,omitempty"`
	PaymentID      string       `json:"paymentId,omitempty"`
	SubscriptionID string       `json:"subscriptionId,omitempty"`
	FormData       *FormData    `json:"formData,omitempty"`
}

// Merge copies every field set on partial over s. FormData is replaced as a whole.
func (s *CheckoutRecoveryState) Merge(partial *CheckoutRecoveryState) {
	if partial == nil {
		return
	}
	if partial.PlanID != "" {
		s.PlanID = partial.PlanID
	}
	if partial.Installments != nil {
		v := *partial.Installments
		s.Installments = &v
	}
	if partial.PaymentType != nil {
		v := *partial.PaymentType
		s.PaymentType = &v
	}
	if partial.ProcessID != "" {
		s.ProcessID = partial.ProcessID
	}
	if partial.PaymentLink != "" {
		s.PaymentLink = partial.PaymentLink
	}
	if partial.PaymentID != "" {
		s.PaymentID = partial.PaymentID
	}
	if partial.SubscriptionID != "" {
		s.SubscriptionID = partial.SubscriptionID
	}
	if partial.FormData != nil {
		fd := *partial.FormData
		s.FormData = &fd
	}
}

// ContactCache is the pre-fill copy of the contact fields.
type ContactCache struct {
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	TaxID    string    `json:"cpf"`
	SavedAt  time.Time `json:"savedAt"`
}
