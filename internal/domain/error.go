package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrEventInFlight      = errors.New("webhook event is already being processed")
)

// ErrorKind tags a checkout failure at the place it is produced so the UI
// message can be chosen without inspecting error text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindMissingPaymentLink
	KindEdgeFunctionCommunication
	KindMissingTaxID
	KindMissingFullName
	KindMissingPhone
	KindInvalidEmail
	KindNoInstallmentsCreated
	KindPlanNotFound
	KindInvalidPlanConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingPaymentLink:
		return "missing_payment_link"
	case KindEdgeFunctionCommunication:
		return "edge_function_communication"
	case KindMissingTaxID:
		return "missing_tax_id"
	case KindMissingFullName:
		return "missing_full_name"
	case KindMissingPhone:
		return "missing_phone"
	case KindInvalidEmail:
		return "invalid_email"
	case KindNoInstallmentsCreated:
		return "no_installments_created"
	case KindPlanNotFound:
		return "plan_not_found"
	case KindInvalidPlanConfig:
		return "invalid_plan_config"
	default:
		return "unknown"
	}
}

// CheckoutError is a technical error carrying its ErrorKind.
type CheckoutError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *CheckoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *CheckoutError) Unwrap() error { return e.Err }

// NewCheckoutError builds a tagged error with a formatted message.
func NewCheckoutError(kind ErrorKind, format string, args ...any) *CheckoutError {
	return &CheckoutError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapCheckoutError tags an underlying error.
func WrapCheckoutError(kind ErrorKind, err error, msg string) *CheckoutError {
	return &CheckoutError{Kind: kind, Msg: msg, Err: err}
}

// GatewayError reports a non-2xx answer or transport failure from an external API.
type GatewayError struct {
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s returned http %d: %s", e.Service, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s returned http %d", e.Service, e.StatusCode)
	}
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Retryable reports whether the caller may re-invoke the same operation.
func (e *GatewayError) Retryable() bool {
	return e.Err != nil || e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// legacyPatterns classifies untyped messages coming back from upstream services,
// which still report failures as plain text.
var legacyPatterns = []struct {
	needle string
	kind   ErrorKind
}{
	{"checkout link", KindMissingPaymentLink},
	{"payment url", KindMissingPaymentLink},
	{"edge function", KindEdgeFunctionCommunication},
	{"failed to send a request", KindEdgeFunctionCommunication},
	{"cpf", KindMissingTaxID},
	{"tax id", KindMissingTaxID},
	{"full name", KindMissingFullName},
	{"nome completo", KindMissingFullName},
	{"phone", KindMissingPhone},
	{"telefone", KindMissingPhone},
	{"e-mail", KindInvalidEmail},
	{"email", KindInvalidEmail},
	{"no installment", KindNoInstallmentsCreated},
	{"nenhuma parcela", KindNoInstallmentsCreated},
}

// KindOf classifies err. Tagged errors win; timeouts and gateway failures are
// communication errors; anything else falls back to message matching.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	var ge *GatewayError
	if errors.As(err, &ge) {
		return KindEdgeFunctionCommunication
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindEdgeFunctionCommunication
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindEdgeFunctionCommunication
	}
	msg := strings.ToLower(err.Error())
	for _, p := range legacyPatterns {
		if strings.Contains(msg, p.needle) {
			return p.kind
		}
	}
	return KindUnknown
}
