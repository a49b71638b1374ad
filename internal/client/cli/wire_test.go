package cli

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/clinauth/internal/client/client"
	"github.com/dmitrijs2005/clinauth/internal/client/config"
	"github.com/dmitrijs2005/clinauth/internal/client/kv"
	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/common"
	"github.com/dmitrijs2005/clinauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerData(email string) models.RegisterData {
	return models.RegisterData{Email: email, Password: []byte("secret1"), Profession: models.ProfessionPatient}
}

func TestOpenBackup(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		c := testConfig(t, "mobile")
		s, closeFn, err := openBackup(ctx, c)
		require.NoError(t, err)
		assert.Nil(t, closeFn)
		assert.IsType(t, &kv.FileStore{}, s)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c := testConfig(t, "mobile")
		c.BackupMedium = config.BackupRedis
		c.RedisAddr = mr.Addr()

		s, closeFn, err := openBackup(ctx, c)
		require.NoError(t, err)
		require.NotNil(t, closeFn)
		t.Cleanup(func() { _ = closeFn() })

		require.NoError(t, s.Set(ctx, common.KeySessionBackup, []byte(`{}`)))
		assert.True(t, mr.Exists(backupKeyPrefix+common.KeySessionBackup))
	})

	t.Run("s3", func(t *testing.T) {
		c := testConfig(t, "mobile")
		c.BackupMedium = config.BackupS3
		c.S3AccessKey = "key"
		c.S3SecretKey = "secret"

		s, closeFn, err := openBackup(ctx, c)
		require.NoError(t, err)
		assert.Nil(t, closeFn)
		assert.IsType(t, &kv.S3Store{}, s)
	})

	t.Run("unknown", func(t *testing.T) {
		c := testConfig(t, "mobile")
		c.BackupMedium = "tape"

		_, _, err := openBackup(ctx, c)
		require.Error(t, err)
	})
}

func TestWire_MobileSessionSurvivesPrimaryLoss(t *testing.T) {
	ctx := context.Background()
	c := testConfig(t, "mobile")

	d, err := wire(ctx, c, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, f := range d.closers {
			_ = f()
		}
	})
	assert.Nil(t, d.remote)

	_, err = d.auth.Register(ctx, registerData("pat@example.org"))
	require.NoError(t, err)

	backup, err := kv.NewFileStore(c.BackupDir)
	require.NoError(t, err)
	raw, err := backup.Get(ctx, common.KeySessionBackup)
	require.NoError(t, err)
	require.NotEmpty(t, raw, "backup tier written on register")

	// Wipe the two tiers living on the primary medium.
	db, err := client.InitDatabase(ctx, c.DatabaseFile)
	require.NoError(t, err)
	defer db.Close()
	primary := kv.NewSQLiteStore(db)
	require.NoError(t, primary.Delete(ctx, common.KeySession))
	require.NoError(t, primary.Delete(ctx, common.KeySessionLegacy))

	u := d.auth.CurrentUser(ctx)
	require.NotNil(t, u)
	assert.Equal(t, "pat@example.org", u.Email)

	healed, err := primary.Get(ctx, common.KeySession)
	require.NoError(t, err)
	assert.NotEmpty(t, healed)
}

func TestWire_RedisBackupUnreachableStillWorks(t *testing.T) {
	ctx := context.Background()
	c := testConfig(t, "mobile")
	c.BackupMedium = config.BackupRedis
	c.RedisAddr = "127.0.0.1:1"

	d, err := wire(ctx, c, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, f := range d.closers {
			_ = f()
		}
	})

	_, err = d.auth.Register(ctx, registerData("pat@example.org"))
	require.NoError(t, err)
	assert.True(t, d.auth.IsAuthenticated(ctx))
}
