//go:build !integration

package catalog

import (
	"errors"
	"testing"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"

	"github.com/shopspring/decimal"
)

func TestEmbeddedCatalog(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.List()) == 0 {
		t.Fatal("embedded catalog is empty")
	}

	p, ok := c.Get("essencial")
	if !ok {
		t.Fatal("lookup should be case-insensitive")
	}
	if p.ID != "ESSENCIAL" || !p.IsRegular() {
		t.Errorf("unexpected plan %+v", p)
	}
	if !p.Price.Equal(decimal.RequireFromString("497")) {
		t.Errorf("price = %s", p.Price)
	}

	corp, ok := c.Get(" Corporativo ")
	if !ok || !corp.IsCustom() {
		t.Fatalf("custom plan not loaded: %+v", corp)
	}
	if corp.ContactOptions == nil || corp.ContactOptions.WhatsAppURL == "" {
		t.Error("custom plan needs a contact url")
	}

	if _, ok := c.Get("PLATINA"); ok {
		t.Error("unknown plan should not resolve")
	}
}

func TestNewRejectsBadPlans(t *testing.T) {
	cases := []struct {
		name  string
		plans []*model.Plan
	}{
		{"custom without contact", []*model.Plan{{ID: "X", CustomPrice: true}}},
		{"custom with payment options", []*model.Plan{{
			ID: "X", CustomPrice: true,
			ContactOptions: &model.ContactOptions{WhatsAppURL: "https://wa.me/1"},
			PaymentOptions: &model.PaymentOptions{CashPaymentURL: "https://pay"},
		}}},
		{"empty id", []*model.Plan{{ID: " "}}},
		{"duplicate", []*model.Plan{{ID: "a"}, {ID: "A"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.plans)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tc.name != "duplicate" && !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("want ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestParseKeepsMalformedRegularPlan(t *testing.T) {
	// A regular plan without payment options still loads; checkout reports it
	// as a configuration error instead of refusing to start.
	c, err := Parse([]byte("plans:\n  - id: broken\n    name: Broken\n    price: \"10\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p, ok := c.Get("BROKEN")
	if !ok || p.IsRegular() {
		t.Fatalf("expected a plan without payment options, got %+v", p)
	}
}
