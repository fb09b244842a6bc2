package usecase

import (
	"errors"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/infra/i18n"
)

const genericErrorKey = "checkout.error.generic"

var kindMessageKeys = map[domain.ErrorKind]string{
	domain.KindMissingPaymentLink:        "checkout.error.missing_payment_link",
	domain.KindEdgeFunctionCommunication: "checkout.error.edge_function_communication",
	domain.KindMissingTaxID:              "checkout.error.missing_tax_id",
	domain.KindMissingFullName:           "checkout.error.missing_full_name",
	domain.KindMissingPhone:              "checkout.error.missing_phone",
	domain.KindInvalidEmail:              "checkout.error.invalid_email",
	domain.KindNoInstallmentsCreated:     "checkout.error.no_installments_created",
}

// ErrorMessages turns technical checkout errors into customer-facing sentences.
// Configuration kinds (unknown plan, malformed plan) and anything unclassified
// share the generic sentence.
type ErrorMessages struct {
	tr *i18n.Translator
}

func NewErrorMessages(tr *i18n.Translator) *ErrorMessages {
	return &ErrorMessages{tr: tr}
}

func (m *ErrorMessages) ForKind(kind domain.ErrorKind) string {
	if key, ok := kindMessageKeys[kind]; ok {
		return m.tr.T(key)
	}
	return m.tr.T(genericErrorKey)
}

// MapErrorToUserMessage classifies err and returns its sentence. A nil error
// maps to the generic sentence.
func (m *ErrorMessages) MapErrorToUserMessage(err error) string {
	return m.ForKind(domain.KindOf(err))
}

// ForResult prefers the kind tagged on a failed result and falls back to
// classifying its error text.
func (m *ErrorMessages) ForResult(res model.PaymentResult) string {
	if res.Kind != domain.KindUnknown {
		return m.ForKind(res.Kind)
	}
	if res.Error == "" {
		return m.ForKind(domain.KindUnknown)
	}
	return m.MapErrorToUserMessage(errors.New(res.Error))
}

// Throttled is shown when the attempt throttle refuses a checkout.
func (m *ErrorMessages) Throttled() string { return m.tr.T("checkout.throttled") }
