package usecase

import "github.com/oklog/ulid/v2"

// NewProcessID returns a sortable correlation id for one checkout attempt.
func NewProcessID() string { return ulid.Make().String() }

// NewSessionID returns the value of the checkout session cookie.
func NewSessionID() string { return ulid.Make().String() }

// ValidSessionID reports whether s looks like an id minted by NewSessionID.
func ValidSessionID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

func recoveryKey(session string) string     { return session + ":recovery" }
func contactKey(session string) string      { return session + ":contact" }
func paymentStateKey(session string) string { return session + ":payment_state" }
