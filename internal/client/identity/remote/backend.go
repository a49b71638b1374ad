// Package remote is the identity backend that delegates to the remote
// store over the client.Client transport. It also migrates local-only
// accounts and runs the dual-path password reset.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/client/client"
	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/client/resettokens"
	"github.com/dmitrijs2005/clinauth/internal/client/session"
	"github.com/dmitrijs2005/clinauth/internal/common"
	"github.com/dmitrijs2005/clinauth/internal/logging"
	"github.com/google/uuid"
)

// LocalDirectory is the view of the local backend needed for migration,
// purge after delete and the fallback reset path.
type LocalDirectory interface {
	Users(ctx context.Context) ([]models.LocalRecord, error)
	Purge(ctx context.Context, email string) error
	SetPassword(ctx context.Context, email string, password []byte) error
}

type Backend struct {
	client       client.Client
	sessions     *session.Store
	tokens       *resettokens.Store
	local        LocalDirectory
	resetURLBase string
	logger       logging.Logger
	now          func() time.Time
	newID        func() string
}

func New(c client.Client, sessions *session.Store, tokens *resettokens.Store, local LocalDirectory, resetURLBase string, l logging.Logger) *Backend {
	if l == nil {
		l = logging.Nop()
	}
	return &Backend{
		client:       c,
		sessions:     sessions,
		tokens:       tokens,
		local:        local,
		resetURLBase: resetURLBase,
		logger:       l.With("module", "remote_identity"),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Register inserts a new row and returns the stored user.
func (b *Backend) Register(ctx context.Context, data models.RegisterData) (models.User, error) {
	u := models.User{
		ID:         b.newID(),
		Email:      common.NormalizeEmail(data.Email),
		Profession: data.Profession,
		Profile:    data.Profile,
		CreatedAt:  b.now().UTC(),
	}

	row, err := b.client.InsertUser(ctx, toRow(u, data.Password, ""))
	if err != nil {
		return models.User{}, fmt.Errorf("remote register: %w", err)
	}

	stored, err := MapRecord(row)
	if err != nil {
		return models.User{}, err
	}
	return stored, nil
}

// Login requires a remote row for the email and a successful sign-in, then
// establishes the session from the first row.
func (b *Backend) Login(ctx context.Context, c models.Credentials) (models.User, error) {
	email := common.NormalizeEmail(c.Email)

	rows, err := b.client.FindUsers(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("remote lookup: %w", err)
	}
	if len(rows) == 0 {
		return models.User{}, fmt.Errorf("%w: no remote account for %s", common.ErrNotFound, email)
	}

	if err := b.client.SignIn(ctx, email, c.Password); err != nil {
		return models.User{}, fmt.Errorf("remote sign-in: %w", err)
	}

	u, err := MapRecord(rows[0])
	if err != nil {
		return models.User{}, err
	}

	b.sessions.Save(ctx, u)
	return u, nil
}

func (b *Backend) Logout(ctx context.Context) {
	b.client.SignOut()
	b.sessions.Clear(ctx)
}

func (b *Backend) CurrentUser(ctx context.Context) *models.User {
	return b.sessions.Current(ctx)
}

func (b *Backend) IsAuthenticated(ctx context.Context) bool {
	return b.CurrentUser(ctx) != nil
}

// DeleteAccount deletes the remote row, then any local copy, so a later
// local fallback cannot bring the account back. The server only deletes the
// row of the signed-in account, so a session restored from storage without
// an access token is reported as unreachable and left to the local backend.
func (b *Backend) DeleteAccount(ctx context.Context) error {
	u := b.sessions.Current(ctx)
	if u == nil {
		return fmt.Errorf("%w: %v", common.ErrNotFound, common.ErrNoSession)
	}
	if !b.client.HasSession() {
		return fmt.Errorf("%w: no remote sign-in for %s", common.ErrNetwork, u.Email)
	}

	if err := b.client.DeleteUser(ctx, u.ID); err != nil {
		return fmt.Errorf("remote delete: %w", err)
	}

	if err := b.local.Purge(ctx, u.Email); err != nil {
		b.logger.Warn(ctx, "failed to purge local copy", "error", err)
	}
	if err := b.tokens.Discard(ctx, u.Email); err != nil {
		b.logger.Warn(ctx, "failed to discard reset token", "error", err)
	}

	b.client.SignOut()
	b.sessions.Clear(ctx)
	return nil
}

// MigrateExistingUsers inserts every local record whose email has no remote
// row. It returns the number of inserted rows. It is a no-op when the
// remote store is unreachable; per-user failures are logged and skipped.
func (b *Backend) MigrateExistingUsers(ctx context.Context) (int, error) {
	if err := b.client.Ping(ctx); err != nil {
		b.logger.Info(ctx, "remote unreachable, migration skipped", "error", err)
		return 0, nil
	}

	users, err := b.local.Users(ctx)
	if err != nil {
		return 0, err
	}

	migrated := 0
	for _, rec := range users {
		rows, err := b.client.FindUsers(ctx, rec.Email)
		if err != nil {
			b.logger.Warn(ctx, "migration lookup failed", "id", rec.ID, "error", err)
			continue
		}
		if len(rows) > 0 {
			continue
		}

		if _, err := b.client.InsertUser(ctx, toRow(rec.User, nil, rec.PasswordHash)); err != nil {
			if errors.Is(err, common.ErrEmailInUse) {
				continue
			}
			b.logger.Warn(ctx, "migration insert failed", "id", rec.ID, "error", err)
			continue
		}
		migrated++
	}

	if migrated > 0 {
		b.logger.Info(ctx, "local users migrated", "count", migrated)
	}
	return migrated, nil
}

// RequestPasswordReset asks the remote store to send its own reset e-mail
// and, whatever the outcome, mints a local token and returns a fallback
// link for it.
func (b *Backend) RequestPasswordReset(ctx context.Context, email string) (models.ResetRequest, error) {
	email = common.NormalizeEmail(email)

	rows, err := b.client.FindUsers(ctx, email)
	if err != nil {
		return models.ResetRequest{}, fmt.Errorf("remote lookup: %w", err)
	}
	if len(rows) == 0 {
		return models.ResetRequest{}, fmt.Errorf("%w: no remote account for %s", common.ErrNotFound, email)
	}

	nativeErr := b.client.SendPasswordReset(ctx, email)
	if nativeErr != nil {
		b.logger.Warn(ctx, "native reset e-mail failed", "error", nativeErr)
	}

	rt, err := b.tokens.Issue(ctx, email)
	if err != nil {
		if nativeErr != nil {
			return models.ResetRequest{}, errors.Join(nativeErr, err)
		}
		b.logger.Warn(ctx, "fallback reset token not issued", "error", err)
		return models.ResetRequest{}, nil
	}

	return models.ResetRequest{ResetURL: resettokens.Link(b.resetURLBase, rt)}, nil
}

// ResetPassword applies the change directly when a remote session is
// active. Otherwise a local fallback token is consumed, and any other token
// is offered to the remote store as a native reset token.
//
// A fallback token only changes the local copy. The remote row keeps the
// old password until the native link e-mailed by RequestPasswordReset is
// used. Under the unreachable fallback policy the new password is therefore
// rejected by remote login while the remote store is up, and only works once
// login falls back to the local backend.
func (b *Backend) ResetPassword(ctx context.Context, token string, password []byte) error {
	if b.client.HasSession() {
		err := b.client.UpdatePassword(ctx, password, "")
		if err == nil {
			if token != "" {
				if _, err := b.tokens.Consume(ctx, token); err != nil && !errors.Is(err, common.ErrInvalidOrExpiredToken) {
					b.logger.Warn(ctx, "failed to consume reset token", "error", err)
				}
			}
			return nil
		}
		b.logger.Warn(ctx, "direct password update refused", "error", err)
	}

	rt, err := b.tokens.Consume(ctx, token)
	if err == nil {
		if err := b.local.SetPassword(ctx, rt.Email, password); err != nil && !errors.Is(err, common.ErrNotFound) {
			b.logger.Warn(ctx, "failed to update local copy", "error", err)
		}
		return nil
	}
	if !errors.Is(err, common.ErrInvalidOrExpiredToken) {
		return err
	}

	if token == "" {
		return common.ErrInvalidOrExpiredToken
	}
	if err := b.client.UpdatePassword(ctx, password, token); err != nil {
		return fmt.Errorf("remote reset: %w", err)
	}
	return nil
}

// ValidateResetToken checks a token without consuming it.
func (b *Backend) ValidateResetToken(ctx context.Context, token string) (models.ResetTarget, error) {
	rt, err := b.tokens.Lookup(ctx, token)
	if err == nil {
		return models.ResetTarget{Email: rt.Email}, nil
	}
	if !errors.Is(err, common.ErrInvalidOrExpiredToken) {
		return models.ResetTarget{}, err
	}
	if token == "" {
		return models.ResetTarget{}, common.ErrInvalidOrExpiredToken
	}

	email, err := b.client.ValidateResetToken(ctx, token)
	if err != nil {
		return models.ResetTarget{}, fmt.Errorf("remote token check: %w", err)
	}
	return models.ResetTarget{Email: email}, nil
}
