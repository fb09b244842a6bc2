package format

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// taxIDDigits drops the separators allowed in a formatted tax id. Any other
// non-digit rejects the input.
func taxIDDigits(s, separators string) (string, bool) {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			b = append(b, c)
		case strings.IndexByte(separators, c) >= 0:
		default:
			return "", false
		}
	}
	return string(b), true
}

// ValidateCPF checks an individual tax id: 11 digits once dots, dashes and
// spaces are dropped, not all identical, both check digits matching.
func ValidateCPF(s string) bool {
	d, ok := taxIDDigits(s, ".- ")
	if !ok || len(d) != 11 || allSame(d) {
		return false
	}
	return cpfDigit(d[:9], 10) == d[9] && cpfDigit(d[:10], 11) == d[10]
}

func cpfDigit(base string, weight int) byte {
	sum := 0
	for i := 0; i < len(base); i++ {
		sum += int(base[i]-'0') * (weight - i)
	}
	r := (sum * 10) % 11
	if r == 10 {
		r = 0
	}
	return byte('0' + r)
}

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidateCNPJ checks a company tax id the same way; a slash is also allowed.
func ValidateCNPJ(s string) bool {
	d, ok := taxIDDigits(s, "./- ")
	if !ok || len(d) != 14 || allSame(d) {
		return false
	}
	return cnpjDigit(d[:12], cnpjWeights1) == d[12] && cnpjDigit(d[:13], cnpjWeights2) == d[13]
}

func cnpjDigit(base string, weights []int) byte {
	sum := 0
	for i := 0; i < len(base); i++ {
		sum += int(base[i]-'0') * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + 11 - r)
}

func allSame(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}

// ValidatePhone accepts Brazilian numbers with area code (10 or 11 digits),
// optionally prefixed by the 55 country code.
func ValidatePhone(s string) bool {
	d := OnlyDigits(s)
	switch len(d) {
	case 10, 11:
		return true
	case 12, 13:
		return d[:2] == "55"
	}
	return false
}

func ValidateEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
