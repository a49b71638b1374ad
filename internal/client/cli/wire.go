package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/clinauth/internal/client/client"
	"github.com/dmitrijs2005/clinauth/internal/client/config"
	"github.com/dmitrijs2005/clinauth/internal/client/identity/local"
	"github.com/dmitrijs2005/clinauth/internal/client/identity/remote"
	"github.com/dmitrijs2005/clinauth/internal/client/kv"
	"github.com/dmitrijs2005/clinauth/internal/client/resettokens"
	"github.com/dmitrijs2005/clinauth/internal/client/services"
	"github.com/dmitrijs2005/clinauth/internal/client/session"
	"github.com/dmitrijs2005/clinauth/internal/logging"
	"github.com/redis/go-redis/v9"
)

const backupKeyPrefix = "clinauth:"

type deps struct {
	auth    services.AuthService
	remote  client.Client
	closers []func() error
}

func wire(ctx context.Context, c *config.Config, l logging.Logger) (*deps, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	policy, err := services.ParseFallbackPolicy(c.FallbackPolicy)
	if err != nil {
		return nil, err
	}

	d := &deps{}
	fail := func(err error) (*deps, error) {
		for i := len(d.closers) - 1; i >= 0; i-- {
			_ = d.closers[i]()
		}
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	d.closers = append(d.closers, db.Close)

	primary := kv.NewSQLiteStore(db)
	profile := session.Profile(c.HostProfile)
	media := session.Media{Primary: primary}

	if profile == session.ProfileMobile {
		backup, closeFn, err := openBackup(ctx, c)
		if err != nil {
			return fail(err)
		}
		if closeFn != nil {
			d.closers = append(d.closers, closeFn)
		}
		media.Backup = backup
		media.Transient = kv.NewMemoryStore()
	}

	sessions := session.NewForProfile(profile, media, l)
	tokens := resettokens.New(primary)
	localBackend := local.New(primary, sessions, tokens, c.ResetURLBase, l)

	var remoteBackend services.RemoteBackend
	if c.RemotePreferred {
		api, err := client.NewIdentityClient(c.ServerEndpointAddr, c.RequestTimeout)
		if err != nil {
			return fail(err)
		}
		d.closers = append(d.closers, api.Close)
		d.remote = api
		remoteBackend = remote.New(api, sessions, tokens, localBackend, c.ResetURLBase, l)
	}

	sel := services.Selector{RemotePreferred: c.RemotePreferred, Policy: policy}
	d.auth = services.NewAuthService(sel, remoteBackend, localBackend, sessions, l)
	return d, nil
}

// openBackup opens the medium holding the mobile backup tier. The returned
// close function may be nil.
func openBackup(ctx context.Context, c *config.Config) (kv.Store, func() error, error) {
	switch c.BackupMedium {
	case config.BackupFile:
		s, err := kv.NewFileStore(c.BackupDir)
		if err != nil {
			return nil, nil, fmt.Errorf("backup dir: %w", err)
		}
		return s, nil, nil

	case config.BackupRedis:
		rc := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		return kv.NewRedisStore(rc, backupKeyPrefix), rc.Close, nil

	case config.BackupS3:
		s, err := kv.NewS3StoreFromOptions(ctx, kv.S3Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Prefix:       backupKeyPrefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("backup bucket: %w", err)
		}
		return s, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown backup medium %q", c.BackupMedium)
}
