package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/clinauth/internal/client/authctx"
	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/client/services"
	"github.com/dmitrijs2005/clinauth/internal/client/session"
	"github.com/dmitrijs2005/clinauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuth is an AuthService with a fixed current user.
type stubAuth struct {
	services.AuthService
	user       *models.User
	migrations int
	logouts    int
}

func (s *stubAuth) CurrentUser(context.Context) *models.User { return s.user }
func (s *stubAuth) Logout(context.Context)                   { s.user = nil; s.logouts++ }
func (s *stubAuth) MigrateExistingUsers(context.Context)     { s.migrations++ }

func stubApp(profile session.Profile, u *models.User) (*App, *stubAuth) {
	sa := &stubAuth{user: u}
	return &App{
		profile: profile,
		auth:    sa,
		session: authctx.New(sa, nil),
		logger:  logging.Nop(),
		out:     &strings.Builder{},
	}, sa
}

func TestGetStatus(t *testing.T) {
	a, _ := stubApp(session.ProfileWeb, nil)
	assert.Equal(t, "", a.getStatus())

	a.Mode = ModeLocal
	assert.Equal(t, " (local)", a.getStatus())

	a, _ = stubApp(session.ProfileWeb, &models.User{ID: "1", Email: "alice@example.org", Profession: models.ProfessionPatient})
	a.session.Rehydrate(context.Background())
	a.Mode = ModeOffline
	assert.Equal(t, " (alice@example.org offline)", a.getStatus())
}

func TestStartup_RehydratesSession(t *testing.T) {
	capturePrintln(t)
	u := &models.User{ID: "1", Email: "pat@example.org", Profession: models.ProfessionPatient}
	a, sa := stubApp(session.ProfileMobile, u)

	a.startup(context.Background())

	assert.True(t, a.isLoggedIn())
	assert.Zero(t, sa.migrations, "no migration without a config asking for remote")
}

func TestStartup_DropsDisallowedSession(t *testing.T) {
	capturePrintln(t)
	u := &models.User{ID: "1", Email: "doc@example.org", Profession: models.ProfessionClinician}
	a, sa := stubApp(session.ProfileMobile, u)

	a.startup(context.Background())

	assert.False(t, a.isLoggedIn())
	assert.Equal(t, 1, sa.logouts)
}

func TestStartup_MigratesWhenRemotePreferred(t *testing.T) {
	capturePrintln(t)
	c := testConfig(t, "web")
	c.RemotePreferred = true
	a, sa := stubApp(session.ProfileWeb, nil)
	a.config = c
	a.remote = &fakePinger{}

	a.startup(context.Background())

	assert.Equal(t, 1, sa.migrations)
	assert.Equal(t, ModeOnline, a.Mode)
}

func TestRoot_RunsUntilQuit(t *testing.T) {
	lines := capturePrintln(t)
	a, _ := newTestApp(t, testConfig(t, "web"))
	a.reader = bufio.NewReader(strings.NewReader("help\nquit\n"))

	a.Root(context.Background())

	require.NotEmpty(t, *lines)
	assert.Equal(t, "Welcome to clinauth CLI (type 'help' for commands)", (*lines)[0])
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}
