//go:build !integration

package format

import "testing"

func TestValidateCPF(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"valid digits", "11144477735", true},
		{"valid formatted", "111.444.777-35", true},
		{"all same digits", "11111111111", false},
		{"too short", "123", false},
		{"wrong check digit", "11144477736", false},
		{"empty", "", false},
		{"spaced", "111 444 777 35", true},
		{"trailing letters", "11144477735abc", false},
		{"letters between digits", "1a1b1444777-35", false},
		{"slash is not a CPF separator", "111/444/777-35", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateCPF(tc.in); got != tc.want {
				t.Errorf("ValidateCPF(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidateCNPJ(t *testing.T) {
	if !ValidateCNPJ("11.222.333/0001-81") {
		t.Error("expected formatted CNPJ to be valid")
	}
	if ValidateCNPJ("11222333000182") {
		t.Error("expected wrong check digit to fail")
	}
	if ValidateCNPJ("00000000000000") {
		t.Error("expected repeated digits to fail")
	}
	if ValidateCNPJ("11.222.333/0001-81x") {
		t.Error("expected stray characters to fail")
	}
}

func TestValidatePhone(t *testing.T) {
	valid := []string{"(11) 98765-4321", "1134567890", "+55 11 98765-4321"}
	for _, v := range valid {
		if !ValidatePhone(v) {
			t.Errorf("ValidatePhone(%q) = false", v)
		}
	}
	invalid := []string{"", "98765-4321", "+44 20 7946 0958", "123456789012345"}
	for _, v := range invalid {
		if ValidatePhone(v) {
			t.Errorf("ValidatePhone(%q) = true", v)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("cliente@example.com.br") {
		t.Error("expected address to be valid")
	}
	if ValidateEmail("not-an-email") || ValidateEmail("") {
		t.Error("expected malformed addresses to fail")
	}
}
