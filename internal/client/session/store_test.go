package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/client/kv"
	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

var errBroken = errors.New("quota exceeded")

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errBroken }
func (brokenStore) Set(context.Context, string, []byte) error   { return errBroken }
func (brokenStore) Delete(context.Context, string) error        { return errBroken }

func sampleUser() models.User {
	return models.User{
		ID:         "lx3k9a-0a1b2c3d",
		Email:      "a@x.com",
		Profession: models.ProfessionPatient,
		Profile:    models.Profile{FullName: "Ann Lee", City: "Recife", Phone: "555"},
		CreatedAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

type mobileFixture struct {
	primary, backup, transient *kv.MemoryStore
	store                      *Store
}

func newMobile() mobileFixture {
	f := mobileFixture{
		primary:   kv.NewMemoryStore(),
		backup:    kv.NewMemoryStore(),
		transient: kv.NewMemoryStore(),
	}
	f.store = NewForProfile(ProfileMobile, Media{Primary: f.primary, Backup: f.backup, Transient: f.transient}, nil)
	return f
}

func raw(t *testing.T, s kv.Store, key string) []byte {
	t.Helper()
	b, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	return b
}

func TestSaveGet_RoundTrip(t *testing.T) {
	for _, p := range []Profile{ProfileWeb, ProfileMobile} {
		t.Run(string(p), func(t *testing.T) {
			m := Media{Primary: kv.NewMemoryStore(), Backup: kv.NewMemoryStore(), Transient: kv.NewMemoryStore()}
			s := NewForProfile(p, m, nil)
			ctx := context.Background()

			u := sampleUser()
			s.Save(ctx, u)

			got := s.Get(ctx)
			require.NotNil(t, got)
			assert.Equal(t, u, *got)
			assert.True(t, s.Has(ctx))
		})
	}
}

func TestSave_WritesEveryActiveTier(t *testing.T) {
	f := newMobile()
	f.store.Save(context.Background(), sampleUser())

	assert.NotEmpty(t, raw(t, f.primary, common.KeySession))
	assert.NotEmpty(t, raw(t, f.primary, common.KeySessionLegacy))
	assert.NotEmpty(t, raw(t, f.backup, common.KeySessionBackup))
	assert.NotEmpty(t, raw(t, f.transient, common.KeySessionTransient))
}

func TestSave_WebSkipsBackupTiers(t *testing.T) {
	backup := kv.NewMemoryStore()
	s := NewForProfile(ProfileWeb, Media{Primary: kv.NewMemoryStore(), Backup: backup, Transient: kv.NewMemoryStore()}, nil)

	s.Save(context.Background(), sampleUser())
	assert.Nil(t, raw(t, backup, common.KeySessionBackup))
	assert.Len(t, s.Tiers(), 2)
}

func TestGet_RecoversFromBackupAndRepairsPrimary(t *testing.T) {
	f := newMobile()
	ctx := context.Background()
	u := sampleUser()
	f.store.Save(ctx, u)

	require.NoError(t, f.primary.Delete(ctx, common.KeySession))
	require.NoError(t, f.primary.Delete(ctx, common.KeySessionLegacy))
	require.NoError(t, f.transient.Delete(ctx, common.KeySessionTransient))

	got := f.store.Get(ctx)
	require.NotNil(t, got)
	assert.Equal(t, u.Email, got.Email)

	assert.Equal(t, raw(t, f.backup, common.KeySessionBackup), raw(t, f.primary, common.KeySession))
	assert.NotEmpty(t, raw(t, f.primary, common.KeySessionLegacy))
	// tiers after the hit are left alone
	assert.Nil(t, raw(t, f.transient, common.KeySessionTransient))
}

func TestGet_RecoversFromTransient(t *testing.T) {
	f := newMobile()
	ctx := context.Background()
	f.store.Save(ctx, sampleUser())

	require.NoError(t, f.primary.Delete(ctx, common.KeySession))
	require.NoError(t, f.primary.Delete(ctx, common.KeySessionLegacy))
	require.NoError(t, f.backup.Delete(ctx, common.KeySessionBackup))

	require.NotNil(t, f.store.Get(ctx))
	assert.NotEmpty(t, raw(t, f.primary, common.KeySession))
	assert.NotEmpty(t, raw(t, f.backup, common.KeySessionBackup))
}

func TestGet_MigratesLegacyKey(t *testing.T) {
	primary := kv.NewMemoryStore()
	s := NewForProfile(ProfileWeb, Media{Primary: primary}, nil)
	ctx := context.Background()

	require.NoError(t, primary.Set(ctx, common.KeySessionLegacy, []byte(`{"id":"1","email":"old@x.com","profession":"clinician"}`)))

	got := s.Get(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "old@x.com", got.Email)
	assert.NotEmpty(t, raw(t, primary, common.KeySession))
}

func TestGet_WebDoesNotReadBackup(t *testing.T) {
	backup := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, backup.Set(ctx, common.KeySessionBackup, []byte(`{"id":"1","email":"a@x.com","profession":"patient"}`)))

	s := NewForProfile(ProfileWeb, Media{Primary: kv.NewMemoryStore(), Backup: backup}, nil)
	assert.Nil(t, s.Get(ctx))
}

func TestGet_CorruptTierFallsThrough(t *testing.T) {
	f := newMobile()
	ctx := context.Background()
	f.store.Save(ctx, sampleUser())

	require.NoError(t, f.primary.Set(ctx, common.KeySession, []byte("{not json")))

	got := f.store.Get(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "a@x.com", got.Email)
	assert.JSONEq(t, string(raw(t, f.primary, common.KeySessionLegacy)), string(raw(t, f.primary, common.KeySession)))
}

func TestGet_IncompleteRecordFallsThroughToBackup(t *testing.T) {
	cases := map[string]string{
		"null":         `null`,
		"empty object": `{}`,
		"missing id":   `{"email":"a@x.com","profession":"patient"}`,
		"email only":   `{"email":"a@x.com"}`,
	}
	for name, stale := range cases {
		t.Run(name, func(t *testing.T) {
			f := newMobile()
			ctx := context.Background()
			u := sampleUser()
			f.store.Save(ctx, u)

			require.NoError(t, f.primary.Set(ctx, common.KeySession, []byte(stale)))
			require.NoError(t, f.primary.Set(ctx, common.KeySessionLegacy, []byte(stale)))

			assert.True(t, f.store.Has(ctx))
			got := f.store.Current(ctx)
			require.NotNil(t, got)
			assert.Equal(t, u.ID, got.ID)
			assert.Equal(t, u.Email, got.Email)

			var repaired models.User
			require.NoError(t, json.Unmarshal(raw(t, f.primary, common.KeySession), &repaired))
			assert.True(t, Valid(&repaired))
		})
	}
}

func TestFailingTier_DegradesInsteadOfFailing(t *testing.T) {
	backup := kv.NewMemoryStore()
	s := New([]Tier{
		{Name: "primary", Key: common.KeySession, Store: brokenStore{}},
		{Name: "backup", Key: common.KeySessionBackup, Store: backup},
	}, nil)
	ctx := context.Background()

	s.Save(ctx, sampleUser())
	assert.NotEmpty(t, raw(t, backup, common.KeySessionBackup))

	got := s.Get(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "a@x.com", got.Email)

	s.Clear(ctx)
	assert.Nil(t, raw(t, backup, common.KeySessionBackup))
	assert.Nil(t, s.Get(ctx))
}

func TestClear_ReachesAllMediaAndIsIdempotent(t *testing.T) {
	primary, backup, transient := kv.NewMemoryStore(), kv.NewMemoryStore(), kv.NewMemoryStore()
	ctx := context.Background()
	data := []byte(`{"id":"1","email":"a@x.com","profession":"patient"}`)
	require.NoError(t, backup.Set(ctx, common.KeySessionBackup, data))
	require.NoError(t, transient.Set(ctx, common.KeySessionTransient, data))

	s := NewForProfile(ProfileWeb, Media{Primary: primary, Backup: backup, Transient: transient}, nil)
	s.Save(ctx, sampleUser())

	s.Clear(ctx)
	s.Clear(ctx)

	assert.Nil(t, raw(t, primary, common.KeySession))
	assert.Nil(t, raw(t, primary, common.KeySessionLegacy))
	assert.Nil(t, raw(t, backup, common.KeySessionBackup))
	assert.Nil(t, raw(t, transient, common.KeySessionTransient))
	assert.False(t, s.Has(ctx))
}

func TestValidAndCurrent(t *testing.T) {
	u := sampleUser()
	assert.True(t, Valid(&u))
	assert.False(t, Valid(nil))
	assert.False(t, Valid(&models.User{ID: "1", Email: "a@x.com"}))

	primary := kv.NewMemoryStore()
	s := NewForProfile(ProfileWeb, Media{Primary: primary}, nil)
	ctx := context.Background()

	require.NoError(t, primary.Set(ctx, common.KeySession, []byte(`{"email":"a@x.com"}`)))
	assert.Nil(t, s.Get(ctx))
	assert.Nil(t, s.Current(ctx))
	assert.False(t, s.Has(ctx))

	s.Save(ctx, u)
	require.NotNil(t, s.Current(ctx))
}

func TestTiersFor_SkipsNilMedia(t *testing.T) {
	tiers := TiersFor(ProfileMobile, Media{Primary: kv.NewMemoryStore(), Transient: kv.NewMemoryStore()})
	names := make([]string, 0, len(tiers))
	for _, tr := range tiers {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"primary", "legacy", "transient"}, names)
	assert.True(t, ProfileMobile.Valid())
	assert.False(t, Profile("desktop").Valid())
}
