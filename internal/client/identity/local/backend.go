// Package local is the identity backend that needs no network. Users live in
// one persisted list on a key/value medium.
//
// Passwords are hashed on register so records can later be migrated, but
// login does not check them: local-only mode accepts any password for a
// known email.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/client/kv"
	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/client/resettokens"
	"github.com/dmitrijs2005/clinauth/internal/client/session"
	"github.com/dmitrijs2005/clinauth/internal/common"
	"github.com/dmitrijs2005/clinauth/internal/cryptox"
	"github.com/dmitrijs2005/clinauth/internal/logging"
)

type Backend struct {
	store        kv.Store
	sessions     *session.Store
	tokens       *resettokens.Store
	resetURLBase string
	logger       logging.Logger
	now          func() time.Time

	// guards read-modify-write of the users list
	mu sync.Mutex
}

func New(store kv.Store, sessions *session.Store, tokens *resettokens.Store, resetURLBase string, l logging.Logger) *Backend {
	if l == nil {
		l = logging.Nop()
	}
	return &Backend{
		store:        store,
		sessions:     sessions,
		tokens:       tokens,
		resetURLBase: resetURLBase,
		logger:       l.With("module", "local_identity"),
		now:          time.Now,
	}
}

// NewID returns a time-prefixed id with a random suffix.
func NewID(now time.Time) string {
	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		suffix = fmt.Sprintf("%08x", now.UnixNano()&0xffffffff)
	}
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + suffix
}

// Users returns every local record. A missing list is empty.
func (b *Backend) Users(ctx context.Context) ([]models.LocalRecord, error) {
	data, err := b.store.Get(ctx, common.KeyLocalUsers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var users []models.LocalRecord
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("%w: corrupt users list: %v", common.ErrStorage, err)
	}
	return users, nil
}

func (b *Backend) saveUsers(ctx context.Context, users []models.LocalRecord) error {
	if users == nil {
		users = []models.LocalRecord{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	if err := b.store.Set(ctx, common.KeyLocalUsers, data); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

func indexByEmail(users []models.LocalRecord, email string) int {
	email = common.NormalizeEmail(email)
	for i, u := range users {
		if common.NormalizeEmail(u.Email) == email {
			return i
		}
	}
	return -1
}

func (b *Backend) insert(ctx context.Context, rec models.LocalRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	users, err := b.Users(ctx)
	if err != nil {
		return err
	}
	if indexByEmail(users, rec.Email) >= 0 {
		return common.ErrEmailInUse
	}
	return b.saveUsers(ctx, append(users, rec))
}

// Register appends a new record. Emails are unique regardless of case.
func (b *Backend) Register(ctx context.Context, data models.RegisterData) (models.User, error) {
	now := b.now().UTC()
	u := models.User{
		ID:         NewID(now),
		Email:      common.NormalizeEmail(data.Email),
		Profession: data.Profession,
		Profile:    data.Profile,
		CreatedAt:  now,
	}

	rec := models.LocalRecord{User: u, PasswordHash: cryptox.HashPassword(data.Password)}
	if err := b.insert(ctx, rec); err != nil {
		return models.User{}, err
	}

	b.logger.Info(ctx, "user registered", "id", u.ID)
	return u, nil
}

// Import stores a user created elsewhere, keeping its id.
func (b *Backend) Import(ctx context.Context, u models.User, password []byte) error {
	u.Email = common.NormalizeEmail(u.Email)
	rec := models.LocalRecord{User: u}
	if len(password) > 0 {
		rec.PasswordHash = cryptox.HashPassword(password)
	}
	return b.insert(ctx, rec)
}

// Login looks the email up and establishes the session. The password is not
// verified.
func (b *Backend) Login(ctx context.Context, c models.Credentials) (models.User, error) {
	users, err := b.Users(ctx)
	if err != nil {
		return models.User{}, err
	}
	i := indexByEmail(users, c.Email)
	if i < 0 {
		return models.User{}, fmt.Errorf("%w: no local account for %s", common.ErrNotFound, common.NormalizeEmail(c.Email))
	}

	u := users[i].User
	b.sessions.Save(ctx, u)
	return u, nil
}

func (b *Backend) Logout(ctx context.Context) {
	b.sessions.Clear(ctx)
}

func (b *Backend) CurrentUser(ctx context.Context) *models.User {
	return b.sessions.Current(ctx)
}

func (b *Backend) IsAuthenticated(ctx context.Context) bool {
	return b.CurrentUser(ctx) != nil
}

// DeleteAccount removes the signed-in user's record and ends the session.
func (b *Backend) DeleteAccount(ctx context.Context) error {
	u := b.sessions.Current(ctx)
	if u == nil {
		return fmt.Errorf("%w: %v", common.ErrNotFound, common.ErrNoSession)
	}

	removed, err := b.remove(ctx, func(r models.LocalRecord) bool {
		return r.ID == u.ID || common.NormalizeEmail(r.Email) == common.NormalizeEmail(u.Email)
	})
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: no local account for %s", common.ErrNotFound, u.Email)
	}

	if err := b.tokens.Discard(ctx, u.Email); err != nil {
		b.logger.Warn(ctx, "failed to discard reset token", "error", err)
	}
	b.sessions.Clear(ctx)
	return nil
}

// Purge drops the record of email if present.
func (b *Backend) Purge(ctx context.Context, email string) error {
	_, err := b.remove(ctx, func(r models.LocalRecord) bool {
		return common.NormalizeEmail(r.Email) == common.NormalizeEmail(email)
	})
	return err
}

func (b *Backend) remove(ctx context.Context, match func(models.LocalRecord) bool) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	users, err := b.Users(ctx)
	if err != nil {
		return false, err
	}

	kept := users[:0]
	for _, r := range users {
		if !match(r) {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(users) {
		return false, nil
	}
	return true, b.saveUsers(ctx, kept)
}

// SetPassword replaces the stored hash of email.
func (b *Backend) SetPassword(ctx context.Context, email string, password []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	users, err := b.Users(ctx)
	if err != nil {
		return err
	}
	i := indexByEmail(users, email)
	if i < 0 {
		return fmt.Errorf("%w: no local account for %s", common.ErrNotFound, common.NormalizeEmail(email))
	}
	users[i].PasswordHash = cryptox.HashPassword(password)
	return b.saveUsers(ctx, users)
}

func (b *Backend) RequestPasswordReset(ctx context.Context, email string) (models.ResetRequest, error) {
	users, err := b.Users(ctx)
	if err != nil {
		return models.ResetRequest{}, err
	}
	if indexByEmail(users, email) < 0 {
		return models.ResetRequest{}, fmt.Errorf("%w: no local account for %s", common.ErrNotFound, common.NormalizeEmail(email))
	}

	rt, err := b.tokens.Issue(ctx, email)
	if err != nil {
		return models.ResetRequest{}, err
	}
	return models.ResetRequest{ResetURL: resettokens.Link(b.resetURLBase, rt)}, nil
}

// ResetPassword consumes the token and stores the new password hash.
func (b *Backend) ResetPassword(ctx context.Context, token string, password []byte) error {
	rt, err := b.tokens.Consume(ctx, token)
	if err != nil {
		return err
	}
	return b.SetPassword(ctx, rt.Email, password)
}

func (b *Backend) ValidateResetToken(ctx context.Context, token string) (models.ResetTarget, error) {
	rt, err := b.tokens.Lookup(ctx, token)
	if err != nil {
		return models.ResetTarget{}, err
	}
	return models.ResetTarget{Email: rt.Email}, nil
}
