// Package format holds the Brazilian display formats and document checks used
// by checkout, invoices and messaging.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OnlyDigits drops every character that is not 0-9.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCurrency renders v as Brazilian reais, e.g. "R$ 1.234,56".
func FormatCurrency(v decimal.Decimal) string {
	neg := v.IsNegative()
	fixed := v.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("R$ ")
	b.WriteString(groupThousands(intPart))
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// FormatCurrencyCents renders an integer amount of centavos.
func FormatCurrencyCents(cents int64) string {
	return FormatCurrency(decimal.New(cents, -2))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := len(digits) % 3
	var b strings.Builder
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

// FormatDate renders t as dd/mm/yyyy; the zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeLayout)
}

// FormatPhone renders Brazilian landline and mobile numbers, with or without
// the 55 country code. Other lengths come back as bare digits.
func FormatPhone(s string) string {
	d := OnlyDigits(s)
	prefix := ""
	if (len(d) == 12 || len(d) == 13) && strings.HasPrefix(d, "55") {
		prefix = "+55 "
		d = d[2:]
	}
	switch len(d) {
	case 11:
		return prefix + "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	case 10:
		return prefix + "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		return OnlyDigits(s)
	}
}

// FormatCPF renders 11 digits as 000.000.000-00.
func FormatCPF(s string) string {
	d := OnlyDigits(s)
	if len(d) != 11 {
		return d
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// FormatCNPJ renders 14 digits as 00.000.000/0000-00.
func FormatCNPJ(s string) string {
	d := OnlyDigits(s)
	if len(d) != 14 {
		return d
	}
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
}

// FormatTaxID picks CPF or CNPJ layout by digit count.
func FormatTaxID(s string) string {
	d := OnlyDigits(s)
	if len(d) == 14 {
		return FormatCNPJ(d)
	}
	return FormatCPF(d)
}

// NormalizeWhatsAppNumber returns an E.164-like digit string. Bare national
// numbers (10 or 11 digits) get the 55 country code.
func NormalizeWhatsAppNumber(s string) string {
	d := OnlyDigits(s)
	if len(d) == 10 || len(d) == 11 {
		return "55" + d
	}
	return d
}
