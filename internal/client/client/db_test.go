package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/client/kv"
	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/client/session"
	"github.com/dmitrijs2005/clinauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDatabase(context.Background(), filepath.Join(t.TempDir(), "clinauth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInitDatabase_AppliesClientSchema(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	require.NoError(t, db.PingContext(context.Background()))
	assert.True(t, tableExists(t, db, "goose_db_version"))
	assert.True(t, tableExists(t, db, "metadata"))
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "clinauth.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db), "second run must be a no-op")
	assert.True(t, tableExists(t, db, "metadata"))
}

func TestInitDatabase_BacksMetadataStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewSQLiteStore(openTestDB(t))

	got, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	tokenKey := common.KeyResetTokenPrefix + "a@x.com"
	require.NoError(t, store.Set(ctx, common.KeyLocalUsers, []byte(`[]`)))
	require.NoError(t, store.Set(ctx, common.KeyLocalUsers, []byte(`[{"id":"1"}]`)))
	require.NoError(t, store.Set(ctx, tokenKey, []byte(`{}`)))
	require.NoError(t, store.Set(ctx, "reset-token%other", []byte(`{}`)))

	got, err = store.Get(ctx, common.KeyLocalUsers)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	listed, err := store.List(ctx, common.KeyResetTokenPrefix)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Contains(t, listed, tokenKey)

	require.NoError(t, store.Delete(ctx, common.KeyLocalUsers))
	require.NoError(t, store.Delete(ctx, common.KeyLocalUsers))
	got, err = store.Get(ctx, common.KeyLocalUsers)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInitDatabase_SessionSurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "clinauth.db")
	u := models.User{
		ID:         "lx3k9a-0a1b2c3d",
		Email:      "a@x.com",
		Profession: models.ProfessionPatient,
		CreatedAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	db, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	session.NewForProfile(session.ProfileWeb, session.Media{Primary: kv.NewSQLiteStore(db)}, nil).Save(ctx, u)
	require.NoError(t, db.Close())

	db, err = InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	primary := kv.NewSQLiteStore(db)
	raw, err := primary.Get(ctx, common.KeySession)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	got := session.NewForProfile(session.ProfileWeb, session.Media{Primary: primary}, nil).Current(ctx)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email)
}
