// Package common defines shared constants and sentinel errors used across
// client and server layers of clinauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Identity errors.
	ErrEmailInUse         = errors.New("email already registered")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrValidation         = errors.New("validation error")
	ErrNoSession          = errors.New("no active session")

	// Reset flow.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// Infrastructure errors. ErrStorage is never surfaced by the session layer.
	ErrNetwork = errors.New("remote backend unreachable")
	ErrStorage = errors.New("storage error")

	// Internal flow control.
	ErrInternal = errors.New("internal error")
)
