package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

// TokenHeader carries the shared secret configured on the gateway side.
const TokenHeader = "asaas-access-token"

// WebhookVerifier authenticates one gateway delivery. body is the raw request
// body, already read by the caller.
type WebhookVerifier interface {
	Verify(r *http.Request, body []byte) bool
}

// TokenVerifier compares the shared-secret header in constant time.
type TokenVerifier struct {
	token []byte
}

func NewTokenVerifier(token string) *TokenVerifier {
	return &TokenVerifier{token: []byte(token)}
}

func (v *TokenVerifier) Verify(r *http.Request, _ []byte) bool {
	if len(v.token) == 0 {
		return false
	}
	got := []byte(r.Header.Get(TokenHeader))
	return subtle.ConstantTimeCompare(got, v.token) == 1
}

// HMACVerifier checks a hex HMAC-SHA256 of the body sent in header. A
// "sha256=" prefix is accepted.
type HMACVerifier struct {
	secret []byte
	header string
}

func NewHMACVerifier(secret, header string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), header: header}
}

func (v *HMACVerifier) Verify(r *http.Request, body []byte) bool {
	if len(v.secret) == 0 {
		return false
	}
	sig := strings.TrimSpace(r.Header.Get(v.header))
	sig = strings.TrimPrefix(strings.ToLower(sig), "sha256=")
	got, err := hex.DecodeString(sig)
	if err != nil || len(got) == 0 {
		return false
	}
	return hmac.Equal(got, Sign(v.secret, body))
}

// Sign returns the raw HMAC-SHA256 of body.
func Sign(secret, body []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write(body)
	return h.Sum(nil)
}

// AnyVerifier accepts a delivery when one of its verifiers does.
type AnyVerifier []WebhookVerifier

func (a AnyVerifier) Verify(r *http.Request, body []byte) bool {
	for _, v := range a {
		if v.Verify(r, body) {
			return true
		}
	}
	return false
}

// NewVerifier builds the verifier for whatever secrets are configured. With
// neither configured every delivery is rejected.
func NewVerifier(token, hmacSecret, hmacHeader string) WebhookVerifier {
	var vs AnyVerifier
	if token != "" {
		vs = append(vs, NewTokenVerifier(token))
	}
	if hmacSecret != "" {
		vs = append(vs, NewHMACVerifier(hmacSecret, hmacHeader))
	}
	return vs
}
