// Package services contains server-side business logic. UserService backs
// every IdentityService RPC: directory lookups and inserts, sign-in, account
// deletion and the password reset flow with its mail outbox.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/common"
	"github.com/dmitrijs2005/clinauth/internal/cryptox"
	"github.com/dmitrijs2005/clinauth/internal/dbx"
	"github.com/dmitrijs2005/clinauth/internal/logging"
	"github.com/dmitrijs2005/clinauth/internal/server/auth"
	"github.com/dmitrijs2005/clinauth/internal/server/config"
	"github.com/dmitrijs2005/clinauth/internal/server/mailer"
	"github.com/dmitrijs2005/clinauth/internal/server/models"
	"github.com/dmitrijs2005/clinauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	minPasswordLength = 6
	resendBatchSize   = 100
)

var knownProfessions = map[string]bool{"clinician": true, "patient": true}

// NewUser is the insert payload. Exactly one of Password and PasswordHash is
// expected; a hash is stored as is, which lets clients migrate accounts
// without knowing their passwords.
type NewUser struct {
	models.User
	Password string
}

type UserService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	mailer       mailer.Mailer
	jwtSecret    []byte
	accessTTL    time.Duration
	resetTTL     time.Duration
	resetURLBase string
	logger       logging.Logger
	now          func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, ml mailer.Mailer, cfg *config.Config, l logging.Logger) *UserService {
	return &UserService{
		db:           db,
		repomanager:  m,
		mailer:       ml,
		jwtSecret:    []byte(cfg.SecretKey),
		accessTTL:    cfg.AccessTokenValidityDuration,
		resetTTL:     cfg.ResetTokenValidityDuration,
		resetURLBase: cfg.ResetURLBase,
		logger:       l.With("module", "user_service"),
		now:          time.Now,
	}
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// Find returns the users with the given email. No match is an empty slice.
func (s *UserService) Find(ctx context.Context, email string) ([]*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, common.NormalizeEmail(email))
	if errors.Is(err, common.ErrNotFound) {
		return []*models.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return []*models.User{u}, nil
}

// Insert stores a new user. A missing ID is generated.
func (s *UserService) Insert(ctx context.Context, in NewUser) (*models.User, error) {
	u := in.User
	u.Email = common.NormalizeEmail(u.Email)
	u.Profession = strings.ToLower(strings.TrimSpace(u.Profession))

	if !validEmail(u.Email) {
		return nil, fmt.Errorf("%w: malformed email", common.ErrValidation)
	}
	if !knownProfessions[u.Profession] {
		return nil, fmt.Errorf("%w: unknown profession %q", common.ErrValidation, u.Profession)
	}

	switch {
	case in.Password != "":
		if len(in.Password) < minPasswordLength {
			return nil, fmt.Errorf("%w: password too short", common.ErrValidation)
		}
		u.PasswordHash = cryptox.HashPassword([]byte(in.Password))
	case u.PasswordHash == "":
		return nil, fmt.Errorf("%w: password or password hash required", common.ErrValidation)
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	created, err := s.repomanager.Users(s.db).Create(ctx, &u)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	s.logger.Info(ctx, "user created", "user_id", created.ID)
	return created, nil
}

// Delete removes the user and its outbox rows in one transaction.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id required", common.ErrValidation)
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.ResetEmails(tx).DeleteByUser(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

// SignIn verifies the password and returns a fresh access token. Unknown
// emails and wrong passwords are indistinguishable.
func (s *UserService) SignIn(ctx context.Context, email, password string) (string, error) {
	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, common.NormalizeEmail(email))
	if errors.Is(err, common.ErrNotFound) {
		return "", common.ErrInvalidCredentials
	}
	if err != nil {
		return "", common.ErrInternal
	}

	ok, err := cryptox.VerifyPassword(u.PasswordHash, []byte(password))
	if err != nil || !ok {
		return "", common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(u.ID, s.jwtSecret, s.accessTTL)
	if err != nil {
		return "", common.ErrInternal
	}
	return token, nil
}

func (s *UserService) resetLink(token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	sep := "?"
	if strings.Contains(s.resetURLBase, "?") {
		sep = "&"
	}
	return s.resetURLBase + sep + q.Encode()
}

// SendPasswordReset mints a reset token, records the message in the outbox
// and hands it to the mailer. A mailer failure leaves the row unsent for
// ResendPending and is not reported to the caller.
func (s *UserService) SendPasswordReset(ctx context.Context, email string) error {
	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("error searching user: %w", err)
	}

	token, err := auth.GenerateResetToken(u.ID, u.Email, s.jwtSecret, s.resetTTL)
	if err != nil {
		return common.ErrInternal
	}

	e := &models.ResetEmail{
		ID:     uuid.NewString(),
		UserID: u.ID,
		Email:  u.Email,
		Link:   s.resetLink(token, u.Email),
	}
	if err := s.repomanager.ResetEmails(s.db).Create(ctx, e); err != nil {
		return fmt.Errorf("error storing reset email: %w", err)
	}

	s.deliver(ctx, e)
	return nil
}

func (s *UserService) deliver(ctx context.Context, e *models.ResetEmail) bool {
	if err := s.mailer.Send(ctx, mailer.ResetMessage(e.ID, e.Email, e.Link)); err != nil {
		s.logger.Warn(ctx, "reset email not delivered", "id", e.ID, "error", err)
		return false
	}
	if err := s.repomanager.ResetEmails(s.db).MarkSent(ctx, e.ID, s.now()); err != nil {
		s.logger.Warn(ctx, "failed to mark reset email sent", "id", e.ID, "error", err)
	}
	return true
}

// ResendPending retries outbox rows that never reached the mailer and
// returns how many went out.
func (s *UserService) ResendPending(ctx context.Context) (int, error) {
	pending, err := s.repomanager.ResetEmails(s.db).ListUnsent(ctx, resendBatchSize)
	if err != nil {
		return 0, fmt.Errorf("error listing unsent emails: %w", err)
	}
	sent := 0
	for _, e := range pending {
		if s.deliver(ctx, e) {
			sent++
		}
	}
	return sent, nil
}

// UpdatePassword replaces the password of userID.
func (s *UserService) UpdatePassword(ctx context.Context, userID, password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password too short", common.ErrValidation)
	}
	if err := s.repomanager.Users(s.db).UpdatePassword(ctx, userID, cryptox.HashPassword([]byte(password))); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	s.logger.Info(ctx, "password updated", "user_id", userID)
	return nil
}

// ValidateResetToken returns the email a reset token was issued for. The
// account must still exist.
func (s *UserService) ValidateResetToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseResetToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return claims, nil
}
