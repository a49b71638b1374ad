// Package users declares the server-side repository contract for identity
// records and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/clinauth/internal/server/models"
)

// Repository defines persistence operations for users. Lookups return
// common.ErrNotFound when no row matches.
type Repository interface {
	// Create inserts user and fills in CreatedAt. A duplicate email yields
	// common.ErrEmailInUse.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail expects an already normalized email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	Delete(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
