package utils // helpers for session tokens and one-time passcodes

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// NewSessionToken returns a fresh opaque session token. The token is stored
// verbatim on the user row and carried by the client in a cookie; a new
// login overwrites the previous value, invalidating the old session.
func NewSessionToken() string {
	return uuid.NewString()
}

// NewPublicID returns the stable public identifier assigned to a note on
// its first share.
func NewPublicID() string {
	return uuid.NewString()
}

// OTP is a pending one-time passcode together with its expiry.
type OTP struct {
	Code      string
	ExpiresAt time.Time
}

// NewOTP generates a 6-digit numeric passcode valid for ttl from now.
// The code is drawn from crypto/rand and zero-padded, so "042137" is a
// possible value.
func NewOTP(ttl time.Duration) (OTP, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return OTP{}, err
	}
	return OTP{
		Code:      fmt.Sprintf("%06d", n.Int64()),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}, nil
}

// Expired reports whether the passcode's validity window has passed at
// the given instant.
func (o OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// Matches reports whether the submitted code equals the stored one. The
// comparison is exact string equality; leading zeros are significant.
func (o OTP) Matches(submitted string) bool {
	return o.Code != "" && o.Code == submitted
}
