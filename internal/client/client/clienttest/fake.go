// Package clienttest provides an in-memory client.Client for tests of the
// identity backends and the orchestrator.
package clienttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/clinauth/internal/client/client"
	"github.com/dmitrijs2005/clinauth/internal/common"
	"github.com/dmitrijs2005/clinauth/internal/cryptox"
)

// Fake is a remote store kept in memory. Setting Down makes every call fail
// as unreachable; Errs overrides single methods.
type Fake struct {
	mu sync.Mutex

	Down bool
	Errs map[string]error

	rows      map[string]client.Row
	hashes    map[string]string
	native    map[string]string
	signedIn  string
	calls     map[string]int
	resetSent []string
}

func New() *Fake {
	return &Fake{
		Errs:   map[string]error{},
		rows:   map[string]client.Row{},
		hashes: map[string]string{},
		native: map[string]string{},
		calls:  map[string]int{},
	}
}

func (f *Fake) enter(method string) error {
	f.calls[method]++
	if f.Down {
		return fmt.Errorf("%w: connection refused", common.ErrNetwork)
	}
	return f.Errs[method]
}

// Calls returns how many times method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// Seed stores a raw row, as an older schema version might have written it.
func (f *Fake) Seed(row client.Row, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email := common.NormalizeEmail(fmt.Sprint(row["email"]))
	f.rows[email] = copyRow(row)
	if password != "" {
		f.hashes[email] = cryptox.HashPassword([]byte(password))
	}
}

// Row returns the stored row of email, or nil.
func (f *Fake) Row(email string) client.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[common.NormalizeEmail(email)]
	if !ok {
		return nil
	}
	return copyRow(r)
}

// Len is the number of stored rows.
func (f *Fake) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// PasswordMatches reports whether password is the stored one for email.
func (f *Fake) PasswordMatches(email, password string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	ok, _ := cryptox.VerifyPassword(f.hashes[common.NormalizeEmail(email)], []byte(password))
	return ok
}

// ResetsSent lists the emails a native reset was sent to.
func (f *Fake) ResetsSent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.resetSent...)
}

// NativeToken returns the last native reset token issued for email.
func (f *Fake) NativeToken(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for tok, e := range f.native {
		if e == common.NormalizeEmail(email) {
			return tok
		}
	}
	return ""
}

func copyRow(r client.Row) client.Row {
	out := make(client.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (f *Fake) Close() error { return nil }

func (f *Fake) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enter("Ping")
}

func (f *Fake) FindUsers(_ context.Context, email string) ([]client.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("FindUsers"); err != nil {
		return nil, err
	}
	r, ok := f.rows[common.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return []client.Row{copyRow(r)}, nil
}

func (f *Fake) InsertUser(_ context.Context, row client.Row) (client.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("InsertUser"); err != nil {
		return nil, err
	}

	email := common.NormalizeEmail(fmt.Sprint(row["email"]))
	if _, ok := f.rows[email]; ok {
		return nil, fmt.Errorf("%w: duplicate key value violates unique constraint", common.ErrEmailInUse)
	}

	stored := copyRow(row)
	delete(stored, "password")
	delete(stored, "password_hash")

	switch {
	case row["password"] != nil:
		f.hashes[email] = cryptox.HashPassword([]byte(fmt.Sprint(row["password"])))
	case row["password_hash"] != nil:
		f.hashes[email] = fmt.Sprint(row["password_hash"])
	}

	f.rows[email] = stored
	return copyRow(stored), nil
}

func (f *Fake) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteUser"); err != nil {
		return err
	}
	for email, r := range f.rows {
		if fmt.Sprint(r["id"]) == id {
			if f.signedIn != email {
				return fmt.Errorf("%w: not signed in as %s", common.ErrInvalidCredentials, id)
			}
			delete(f.rows, email)
			delete(f.hashes, email)
			return nil
		}
	}
	return fmt.Errorf("%w: user %s", common.ErrNotFound, id)
}

func (f *Fake) SignIn(_ context.Context, email string, password []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SignIn"); err != nil {
		return err
	}
	email = common.NormalizeEmail(email)
	ok, _ := cryptox.VerifyPassword(f.hashes[email], password)
	if !ok {
		return common.ErrInvalidCredentials
	}
	f.signedIn = email
	return nil
}

func (f *Fake) SignOut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedIn = ""
}

func (f *Fake) HasSession() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signedIn != ""
}

func (f *Fake) SendPasswordReset(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SendPasswordReset"); err != nil {
		return err
	}
	email = common.NormalizeEmail(email)
	if _, ok := f.rows[email]; !ok {
		return common.ErrNotFound
	}
	f.native[fmt.Sprintf("native-%d", len(f.native)+1)] = email
	f.resetSent = append(f.resetSent, email)
	return nil
}

func (f *Fake) UpdatePassword(_ context.Context, password []byte, resetToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdatePassword"); err != nil {
		return err
	}

	email := f.signedIn
	if resetToken != "" {
		e, ok := f.native[resetToken]
		if !ok {
			return common.ErrInvalidOrExpiredToken
		}
		delete(f.native, resetToken)
		email = e
	}
	if email == "" {
		return common.ErrInvalidCredentials
	}
	f.hashes[email] = cryptox.HashPassword(password)
	return nil
}

func (f *Fake) ValidateResetToken(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ValidateResetToken"); err != nil {
		return "", err
	}
	e, ok := f.native[token]
	if !ok {
		return "", common.ErrInvalidOrExpiredToken
	}
	return e, nil
}

var _ client.Client = (*Fake)(nil)
