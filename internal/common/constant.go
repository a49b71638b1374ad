package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token of an active remote session.
const AccessTokenHeaderName = "access_token"

// Keys of the persisted state on the local key/value medium.
const (
	KeySession          = "current-session"
	KeySessionLegacy    = "current-session-legacy"
	KeySessionBackup    = "current-session-backup"
	KeySessionTransient = "current-session-transient"
	KeyLocalUsers       = "local-users-list"
	KeyResetTokenPrefix = "reset-token:"
)

// ResetTokenKey returns the medium key holding the reset token for email.
func ResetTokenKey(email string) string {
	return KeyResetTokenPrefix + NormalizeEmail(email)
}
