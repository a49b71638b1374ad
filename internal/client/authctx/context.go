// Package authctx surfaces the auth orchestrator to a UI as a small state
// machine: idle -> authenticating -> authenticated, or back to idle with an
// error.
package authctx

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/logging"
)

type Status string

const (
	StatusIdle           Status = "idle"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
	StatusError          Status = "idle-with-error"
)

// State is a snapshot. User is set only when authenticated; Err holds the
// failure of the last operation.
type State struct {
	Status Status
	User   *models.User
	Err    error
}

// Authenticator is the part of the auth service the context drives.
type Authenticator interface {
	Login(ctx context.Context, c models.Credentials) (models.User, error)
	Register(ctx context.Context, data models.RegisterData) (models.User, error)
	Logout(ctx context.Context)
	DeleteAccount(ctx context.Context) error
	CurrentUser(ctx context.Context) *models.User
}

type Context struct {
	auth   Authenticator
	logger logging.Logger

	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int
}

func New(auth Authenticator, l logging.Logger) *Context {
	if l == nil {
		l = logging.Nop()
	}
	return &Context{
		auth:   auth,
		logger: l.With("module", "authctx"),
		state:  State{Status: StatusIdle},
		subs:   make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for every transition. The returned func removes it.
func (c *Context) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Context) set(s State) {
	c.mu.Lock()
	c.state = s
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

// Rehydrate trusts a stored session without re-running credential checks.
func (c *Context) Rehydrate(ctx context.Context) State {
	if u := c.auth.CurrentUser(ctx); u != nil {
		c.logger.Debug(ctx, "session restored", "id", u.ID)
		c.set(State{Status: StatusAuthenticated, User: u})
	} else {
		c.set(State{Status: StatusIdle})
	}
	return c.State()
}

func (c *Context) authenticate(ctx context.Context, op func() (models.User, error)) (models.User, error) {
	c.set(State{Status: StatusAuthenticating})

	u, err := op()
	if err != nil {
		c.set(State{Status: StatusError, Err: err})
		return models.User{}, err
	}

	c.set(State{Status: StatusAuthenticated, User: &u})
	return u, nil
}

func (c *Context) Login(ctx context.Context, cr models.Credentials) (models.User, error) {
	return c.authenticate(ctx, func() (models.User, error) { return c.auth.Login(ctx, cr) })
}

func (c *Context) Register(ctx context.Context, data models.RegisterData) (models.User, error) {
	return c.authenticate(ctx, func() (models.User, error) { return c.auth.Register(ctx, data) })
}

func (c *Context) Logout(ctx context.Context) {
	c.auth.Logout(ctx)
	c.set(State{Status: StatusIdle})
}

// DeleteAccount returns to idle on success. On failure the status is kept
// and the error recorded.
func (c *Context) DeleteAccount(ctx context.Context) error {
	if err := c.auth.DeleteAccount(ctx); err != nil {
		s := c.State()
		s.Err = err
		c.set(s)
		return err
	}
	c.set(State{Status: StatusIdle})
	return nil
}
