// Package resetemails declares the outbox repository for password reset
// messages and its PostgreSQL implementation.
package resetemails

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/server/models"
)

// Repository defines operations on the reset e-mail outbox.
type Repository interface {
	// Create stores e and fills in CreatedAt.
	Create(ctx context.Context, e *models.ResetEmail) error

	// MarkSent records a successful hand-off to the mailer.
	MarkSent(ctx context.Context, id string, at time.Time) error

	// ListUnsent returns up to limit messages never handed off, oldest first.
	ListUnsent(ctx context.Context, limit int) ([]*models.ResetEmail, error)

	// DeleteByUser drops every message of userID. Deleting nothing is not an
	// error.
	DeleteByUser(ctx context.Context, userID string) error
}
