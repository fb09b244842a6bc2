package model

import (
	"strings"

	"consulting-portal/internal/domain"

	"github.com/shopspring/decimal"
)

// PaymentOptions holds the hosted checkout links of a regular plan.
type PaymentOptions struct {
	CashPaymentURL   string `yaml:"cash_payment_url" json:"cashPaymentUrl"`
	CreditPaymentURL string `yaml:"credit_payment_url" json:"creditPaymentUrl"`
}

// ContactOptions routes a custom-priced plan to human sales.
type ContactOptions struct {
	WhatsAppURL string `yaml:"whatsapp_url" json:"whatsappUrl"`
}

// Plan is a static catalog entry. Exactly one of the two shapes applies:
// a regular plan has prices and PaymentOptions, a custom plan has
// CustomPrice=true and ContactOptions.
type Plan struct {
	ID           string          `yaml:"id" json:"id"`
	Name         string          `yaml:"name" json:"name"`
	Price        decimal.Decimal `yaml:"price" json:"price"`
	TotalPrice   decimal.Decimal `yaml:"total_price" json:"totalPrice"`
	CashPrice    decimal.Decimal `yaml:"cash_price" json:"cashPrice"`
	Installments int             `yaml:"installments" json:"installments"`
	Features     []string        `yaml:"features" json:"features"`

	PaymentOptions *PaymentOptions `yaml:"payment_options" json:"paymentOptions,omitempty"`

	CustomPrice    bool            `yaml:"custom_price" json:"customPrice"`
	ContactOptions *ContactOptions `yaml:"contact_options" json:"contactOptions,omitempty"`
}

// NormalizePlanID is the catalog key form of a plan id.
func NormalizePlanID(id string) string { return strings.ToUpper(strings.TrimSpace(id)) }

func (p *Plan) IsCustom() bool { return p != nil && p.CustomPrice }

// IsRegular reports whether the plan carries the payment links a regular plan needs.
func (p *Plan) IsRegular() bool { return p != nil && !p.CustomPrice && p.PaymentOptions != nil }

// Validate checks that the plan matches exactly one of the two shapes.
func (p *Plan) Validate() error {
	if p == nil || NormalizePlanID(p.ID) == "" {
		return domain.ErrInvalidArgument
	}
	if p.CustomPrice {
		if p.ContactOptions == nil || p.ContactOptions.WhatsAppURL == "" || p.PaymentOptions != nil {
			return domain.ErrInvalidArgument
		}
		return nil
	}
	if p.ContactOptions != nil || p.Price.IsNegative() || p.CashPrice.IsNegative() {
		return domain.ErrInvalidArgument
	}
	return nil
}
