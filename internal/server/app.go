// Package server wires the identity server: PostgreSQL with goose
// migrations, the reset mailer, UserService and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/clinauth/internal/logging"
	"github.com/dmitrijs2005/clinauth/internal/server/config"
	"github.com/dmitrijs2005/clinauth/internal/server/mailer"
	"github.com/dmitrijs2005/clinauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/clinauth/internal/server/services"

	gs "github.com/dmitrijs2005/clinauth/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = repomanager.OpenPostgres

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
}

func newMailer(ctx context.Context, c *config.Config, l logging.Logger) (mailer.Mailer, error) {
	switch c.Mailer {
	case config.MailerS3:
		return mailer.NewS3MailerFromOptions(ctx, mailer.S3Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Prefix:       "outbox/",
		})
	case config.MailerLog:
		return mailer.NewLogMailer(l), nil
	default:
		return nil, fmt.Errorf("unknown mailer %q", c.Mailer)
	}
}

func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("repository manager: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	ml, err := newMailer(ctx, c, l)
	if err != nil {
		db.Close()
		return nil, err
	}

	us := services.NewUserService(db, rm, ml, c, l)

	return &App{config: c, logger: l, db: db, userService: us}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// resendPending retries reset e-mails left unsent by a previous run.
func (app *App) resendPending(ctx context.Context) {
	n, err := app.userService.ResendPending(ctx)
	if err != nil {
		app.logger.Warn(ctx, "resend pending failed", "error", err)
		return
	}
	if n > 0 {
		app.logger.Info(ctx, "resent pending reset emails", "count", n)
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.resendPending(ctx)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
