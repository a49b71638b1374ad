package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/common"
	"github.com/dmitrijs2005/clinauth/internal/server/auth"
	"github.com/dmitrijs2005/clinauth/internal/server/models"
	"github.com/dmitrijs2005/clinauth/internal/server/services"
)

const testSecret = "secret"

// fakeUsers is an in-memory UserService. Passwords are stored in clear in
// PasswordHash.
type fakeUsers struct {
	byEmail  map[string]*models.User
	resets   []string
	findErr  error
	nextID   int
	lastPass map[string]string
}

func newFakeUsers(us ...*models.User) *fakeUsers {
	f := &fakeUsers{byEmail: map[string]*models.User{}, lastPass: map[string]string{}}
	for _, u := range us {
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUsers) Find(_ context.Context, email string) ([]*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if u, ok := f.byEmail[common.NormalizeEmail(email)]; ok {
		return []*models.User{u}, nil
	}
	return []*models.User{}, nil
}

func (f *fakeUsers) Insert(_ context.Context, in services.NewUser) (*models.User, error) {
	u := in.User
	u.Email = common.NormalizeEmail(u.Email)
	if u.Email == "" {
		return nil, fmt.Errorf("%w: email", common.ErrValidation)
	}
	if _, dup := f.byEmail[u.Email]; dup {
		return nil, common.ErrEmailInUse
	}
	if u.ID == "" {
		f.nextID++
		u.ID = fmt.Sprintf("srv-%d", f.nextID)
	}
	if in.Password != "" {
		u.PasswordHash = in.Password
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	}
	f.byEmail[u.Email] = &u
	return &u, nil
}

func (f *fakeUsers) byID(id string) *models.User {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	u := f.byID(id)
	if u == nil {
		return common.ErrNotFound
	}
	delete(f.byEmail, u.Email)
	return nil
}

func (f *fakeUsers) SignIn(_ context.Context, email, password string) (string, error) {
	u, ok := f.byEmail[common.NormalizeEmail(email)]
	if !ok || u.PasswordHash != password {
		return "", common.ErrInvalidCredentials
	}
	return auth.GenerateToken(u.ID, []byte(testSecret), time.Hour)
}

func (f *fakeUsers) SendPasswordReset(_ context.Context, email string) error {
	if _, ok := f.byEmail[common.NormalizeEmail(email)]; !ok {
		return common.ErrNotFound
	}
	f.resets = append(f.resets, email)
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID, password string) error {
	u := f.byID(userID)
	if u == nil {
		return common.ErrNotFound
	}
	if len(password) < 6 {
		return common.ErrValidation
	}
	u.PasswordHash = password
	f.lastPass[userID] = password
	return nil
}

func (f *fakeUsers) ValidateResetToken(_ context.Context, token string) (*auth.Claims, error) {
	return auth.ParseResetToken(token, []byte(testSecret))
}
