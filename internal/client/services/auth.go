// Package services contains application services for the clinauth client.
// This file defines the authentication orchestrator: remote-first calls with
// a local fallback, the register mirror, session establishment and the
// one-off migration of local accounts.
package services

import (
	"context"

	"github.com/dmitrijs2005/clinauth/internal/client/client"
	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/client/session"
	"github.com/dmitrijs2005/clinauth/internal/logging"
)

// Backend is the operation set shared by the local and remote identity
// backends.
type Backend interface {
	Register(ctx context.Context, data models.RegisterData) (models.User, error)
	Login(ctx context.Context, c models.Credentials) (models.User, error)
	Logout(ctx context.Context)
	DeleteAccount(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) (models.ResetRequest, error)
	ResetPassword(ctx context.Context, token string, password []byte) error
	ValidateResetToken(ctx context.Context, token string) (models.ResetTarget, error)
}

// LocalBackend can also store a copy of a user registered remotely.
type LocalBackend interface {
	Backend
	Import(ctx context.Context, u models.User, password []byte) error
}

// RemoteBackend can also migrate local accounts.
type RemoteBackend interface {
	Backend
	MigrateExistingUsers(ctx context.Context) (int, error)
}

// AuthService defines the authentication operations offered to the UI.
//
// Contract:
//   - Login/Register: establish the session on success, whichever backend
//     produced the user.
//   - Logout: always clears the session.
//   - DeleteAccount: requires a session.
//   - RequestPasswordReset/ResetPassword/ValidateResetToken: reset flow.
//   - MigrateExistingUsers: copies local accounts to the remote store;
//     failures are logged, never returned.
type AuthService interface {
	Login(ctx context.Context, c models.Credentials) (models.User, error)
	Register(ctx context.Context, data models.RegisterData) (models.User, error)
	Logout(ctx context.Context)
	DeleteAccount(ctx context.Context) error
	CurrentUser(ctx context.Context) *models.User
	IsAuthenticated(ctx context.Context) bool
	RequestPasswordReset(ctx context.Context, email string) (models.ResetRequest, error)
	ResetPassword(ctx context.Context, token string, password []byte) error
	ValidateResetToken(ctx context.Context, token string) (models.ResetTarget, error)
	MigrateExistingUsers(ctx context.Context)
}

type authService struct {
	sel      Selector
	remote   RemoteBackend
	local    LocalBackend
	sessions *session.Store
	logger   logging.Logger
}

// NewAuthService wires the orchestrator. remote may be nil, which forces
// local-only behaviour.
func NewAuthService(sel Selector, remote RemoteBackend, local LocalBackend, sessions *session.Store, l logging.Logger) AuthService {
	if l == nil {
		l = logging.Nop()
	}
	if sel.Policy == "" {
		sel.Policy = FallbackAny
	}
	return &authService{
		sel:      sel,
		remote:   remote,
		local:    local,
		sessions: sessions,
		logger:   l.With("module", "auth"),
	}
}

func (a *authService) remoteFirst() bool {
	return a.sel.RemotePreferred && a.remote != nil
}

func (a *authService) shouldFallback(err error) bool {
	if a.sel.Policy == FallbackUnreachable {
		return client.IsUnreachable(err)
	}
	return true
}

// orchestrate runs remoteOp when remote mode is on and falls back to
// localOp according to the policy.
func orchestrate[T any](ctx context.Context, a *authService, op string, remoteOp, localOp func() (T, error)) (T, error) {
	if a.remoteFirst() {
		v, err := remoteOp()
		if err == nil {
			return v, nil
		}
		if !a.shouldFallback(err) {
			a.logger.Info(ctx, "remote refused, no fallback", "op", op, "error", err)
			var zero T
			return zero, err
		}
		a.logger.Warn(ctx, "remote failed, falling back to local", "op", op, "kind", client.Classify(err).Kind.String(), "error", err)
	}
	return localOp()
}

func (a *authService) Login(ctx context.Context, c models.Credentials) (models.User, error) {
	if err := c.Validate(); err != nil {
		return models.User{}, err
	}

	u, err := orchestrate(ctx, a, "login",
		func() (models.User, error) { return a.remote.Login(ctx, c) },
		func() (models.User, error) { return a.local.Login(ctx, c) },
	)
	if err != nil {
		return models.User{}, err
	}

	a.sessions.Save(ctx, u)
	return u, nil
}

func (a *authService) Register(ctx context.Context, data models.RegisterData) (models.User, error) {
	if err := data.Validate(); err != nil {
		return models.User{}, err
	}

	u, err := orchestrate(ctx, a, "register",
		func() (models.User, error) {
			u, err := a.remote.Register(ctx, data)
			if err != nil {
				return models.User{}, err
			}
			if err := a.local.Import(ctx, u, data.Password); err != nil {
				a.logger.Warn(ctx, "local mirror skipped", "error", err)
			}
			return u, nil
		},
		func() (models.User, error) { return a.local.Register(ctx, data) },
	)
	if err != nil {
		return models.User{}, err
	}

	a.sessions.Save(ctx, u)
	return u, nil
}

func (a *authService) Logout(ctx context.Context) {
	if a.remote != nil {
		a.remote.Logout(ctx)
	}
	a.sessions.Clear(ctx)
}

func (a *authService) DeleteAccount(ctx context.Context) error {
	_, err := orchestrate(ctx, a, "delete_account",
		func() (struct{}, error) { return struct{}{}, a.remote.DeleteAccount(ctx) },
		func() (struct{}, error) { return struct{}{}, a.local.DeleteAccount(ctx) },
	)
	return err
}

func (a *authService) CurrentUser(ctx context.Context) *models.User {
	return a.sessions.Current(ctx)
}

func (a *authService) IsAuthenticated(ctx context.Context) bool {
	return a.CurrentUser(ctx) != nil
}

func (a *authService) RequestPasswordReset(ctx context.Context, email string) (models.ResetRequest, error) {
	if err := models.ValidateEmail(email); err != nil {
		return models.ResetRequest{}, err
	}
	return orchestrate(ctx, a, "request_password_reset",
		func() (models.ResetRequest, error) { return a.remote.RequestPasswordReset(ctx, email) },
		func() (models.ResetRequest, error) { return a.local.RequestPasswordReset(ctx, email) },
	)
}

func (a *authService) ResetPassword(ctx context.Context, token string, password []byte) error {
	if err := models.ValidatePassword(password); err != nil {
		return err
	}
	_, err := orchestrate(ctx, a, "reset_password",
		func() (struct{}, error) { return struct{}{}, a.remote.ResetPassword(ctx, token, password) },
		func() (struct{}, error) { return struct{}{}, a.local.ResetPassword(ctx, token, password) },
	)
	return err
}

func (a *authService) ValidateResetToken(ctx context.Context, token string) (models.ResetTarget, error) {
	return orchestrate(ctx, a, "validate_reset_token",
		func() (models.ResetTarget, error) { return a.remote.ValidateResetToken(ctx, token) },
		func() (models.ResetTarget, error) { return a.local.ValidateResetToken(ctx, token) },
	)
}

// MigrateExistingUsers is a no-op in local-only mode.
func (a *authService) MigrateExistingUsers(ctx context.Context) {
	if !a.remoteFirst() {
		return
	}
	n, err := a.remote.MigrateExistingUsers(ctx)
	if err != nil {
		a.logger.Warn(ctx, "migration failed", "error", err)
		return
	}
	a.logger.Debug(ctx, "migration pass finished", "migrated", n)
}
