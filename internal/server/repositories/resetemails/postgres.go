package resetemails

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/common"
	"github.com/dmitrijs2005/clinauth/internal/dbx"
	"github.com/dmitrijs2005/clinauth/internal/server/models"
)

// PostgresRepository implements the outbox over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new outbox row.
func (r *PostgresRepository) Create(ctx context.Context, e *models.ResetEmail) error {
	query := `
		INSERT INTO password_reset_emails (id, user_id, email, link)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query, e.ID, e.UserID, e.Email, e.Link).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// MarkSent sets sent_at. A missing row yields common.ErrNotFound.
func (r *PostgresRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE password_reset_emails SET sent_at = $2
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ListUnsent returns pending messages, oldest first.
func (r *PostgresRepository) ListUnsent(ctx context.Context, limit int) ([]*models.ResetEmail, error) {
	query := `
		SELECT id, user_id, email, link, created_at
		FROM password_reset_emails
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.ResetEmail
	for rows.Next() {
		e := &models.ResetEmail{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Email, &e.Link, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// DeleteByUser removes all messages of userID.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM password_reset_emails
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
