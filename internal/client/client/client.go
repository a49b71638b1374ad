package client

import (
	"context"
)

// Row is one loosely typed record as returned by the remote store. Field
// names vary between schema versions; see the remote identity mapper.
type Row map[string]any

// Client is the remote identity store contract.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	FindUsers(ctx context.Context, email string) ([]Row, error)
	InsertUser(ctx context.Context, row Row) (Row, error)
	DeleteUser(ctx context.Context, id string) error
	// SignIn verifies credentials and keeps the issued access token as the
	// active remote session.
	SignIn(ctx context.Context, email string, password []byte) error
	SignOut()
	HasSession() bool
	SendPasswordReset(ctx context.Context, email string) error
	// UpdatePassword changes the password of the signed-in user, or of the
	// user a native reset token was issued for when resetToken is set.
	UpdatePassword(ctx context.Context, password []byte, resetToken string) error
	ValidateResetToken(ctx context.Context, token string) (string, error)
}
