package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/clinauth/internal/client/authctx"
)

func (a *App) getStatus() string {
	s := ""
	if u := a.session.State().User; u != nil {
		s = u.Email + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf(" (%s)", s)
	}
	return s
}

// Root restores a saved session, runs the startup migration pass in
// remote-preferred mode, starts the connectivity watcher and then blocks in
// the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to clinauth CLI (type 'help' for commands)")

	a.startup(ctx)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, onlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) startup(ctx context.Context) {
	if a.config != nil && a.config.RemotePreferred {
		a.checkOnline(ctx)
		a.auth.MigrateExistingUsers(ctx)
	}

	st := a.session.Rehydrate(ctx)
	if st.Status != authctx.StatusAuthenticated {
		return
	}
	if err := a.enforceProfession(ctx, st.User); err != nil {
		return
	}
	printlnFn(fmt.Sprintf("Signed in as %s", st.User.Email))
}
