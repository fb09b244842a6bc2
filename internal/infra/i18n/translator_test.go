//go:build !integration

package i18n

import (
	"strings"
	"testing"
)

func TestTranslator(t *testing.T) {
	translator, err := newTranslatorFromBytes([]byte("greeting: Olá\nwelcome_user: Olá %s"))
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		got := translator.T("greeting")
		want := "Olá"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		got := translator.T("nonexistent_key")
		want := "nonexistent_key"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		got := translator.T("welcome_user", "Ana")
		want := "Olá Ana"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})
}

func TestEmbeddedLocale(t *testing.T) {
	tr := MustDefault()
	for _, key := range []string{
		"checkout.error.missing_payment_link",
		"checkout.error.edge_function_communication",
		"checkout.error.missing_tax_id",
		"checkout.error.missing_full_name",
		"checkout.error.missing_phone",
		"checkout.error.no_installments_created",
		"checkout.error.generic",
		"checkout.throttled",
		"notify.webhook_alert",
	} {
		if !tr.Has(key) {
			t.Errorf("embedded locale is missing %q", key)
		}
	}
	got := tr.T("notify.webhook_alert", "Pagamento vencido", "pay_1", "R$ 10,00", "sub_1", "OVERDUE")
	if !strings.Contains(got, "pay_1") || !strings.Contains(got, "OVERDUE") {
		t.Errorf("webhook alert should carry its arguments, got %q", got)
	}
}
