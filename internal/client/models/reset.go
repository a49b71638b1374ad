package models

import "time"

// ResetTokenTTL is how long a fallback reset token stays valid.
const ResetTokenTTL = time.Hour

// ResetToken authorizes one password change for Email until Expiry.
type ResetToken struct {
	Token  string    `json:"token"`
	Email  string    `json:"email"`
	Expiry time.Time `json:"expiry"`
}

// Expired reports whether the token can no longer be used at now.
func (t ResetToken) Expired(now time.Time) bool {
	return !now.Before(t.Expiry)
}

// ResetRequest is the result of a password reset request. ResetURL is the
// fallback link embedding a locally minted token; it may be empty when the
// backend handled delivery on its own.
type ResetRequest struct {
	ResetURL string
}

// ResetTarget is the result of a token validation.
type ResetTarget struct {
	Email string
}
