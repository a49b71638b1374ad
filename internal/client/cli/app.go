package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/client/authctx"
	"github.com/dmitrijs2005/clinauth/internal/client/config"
	"github.com/dmitrijs2005/clinauth/internal/client/services"
	"github.com/dmitrijs2005/clinauth/internal/client/session"
	"github.com/dmitrijs2005/clinauth/internal/logging"
)

// Mode describes which identity backend currently answers.
type Mode string

const (
	ModeLocal   Mode = "local"
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

const onlineCheckInterval = 10 * time.Second

// pinger is the part of the remote client the status watcher needs.
type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config  *config.Config
	profile session.Profile
	auth    services.AuthService
	session *authctx.Context
	remote  pinger
	Mode    Mode
	reader  *bufio.Reader
	out     io.Writer
	logger  logging.Logger
	closers []func() error
}

// NewApp wires storage, identity backends and the auth context from c.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	if l == nil {
		l = logging.Nop()
	}

	d, err := wire(ctx, c, l)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:  c,
		profile: session.Profile(c.HostProfile),
		auth:    d.auth,
		session: authctx.New(d.auth, l),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		logger:  l.With("module", "cli"),
		closers: d.closers,
		Mode:    ModeLocal,
	}
	if d.remote != nil {
		a.remote = d.remote
		a.Mode = ModeOnline
	}
	return a, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(context.Background(), "switched mode", "mode", mode)
	}
}

// Run starts the REPL and releases every resource when it returns.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close releases the database and backup media connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) isLoggedIn() bool {
	return a.session.State().Status == authctx.StatusAuthenticated
}

// StartOnlineStatusWatcher pings the remote identity server every interval
// and flips Mode between online and offline. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if a.remote == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	if err := a.remote.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
