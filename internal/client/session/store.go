// Package session keeps the current-user record alive across several storage
// tiers. Writes go to every active tier, reads take the first tier that holds
// a record and copy it back into the tiers before it.
package session

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/clinauth/internal/client/kv"
	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/common"
	"github.com/dmitrijs2005/clinauth/internal/logging"
)

// Tier is one named location of the session record.
type Tier struct {
	Name  string
	Key   string
	Store kv.Store
}

// Profile is the kind of host the client runs in.
type Profile string

const (
	ProfileWeb    Profile = "web"
	ProfileMobile Profile = "mobile"
)

func (p Profile) Valid() bool {
	return p == ProfileWeb || p == ProfileMobile
}

// Media are the stores tiers are placed on. Backup and Transient are only
// used by the mobile profile; a nil medium drops its tier.
type Media struct {
	Primary   kv.Store
	Backup    kv.Store
	Transient kv.Store
}

// TiersFor returns the tiers engaged by profile, in recovery order.
func TiersFor(p Profile, m Media) []Tier {
	tiers := []Tier{
		{Name: "primary", Key: common.KeySession, Store: m.Primary},
		{Name: "legacy", Key: common.KeySessionLegacy, Store: m.Primary},
	}
	if p == ProfileMobile {
		tiers = append(tiers,
			Tier{Name: "backup", Key: common.KeySessionBackup, Store: m.Backup},
			Tier{Name: "transient", Key: common.KeySessionTransient, Store: m.Transient},
		)
	}

	out := tiers[:0]
	for _, t := range tiers {
		if t.Store != nil {
			out = append(out, t)
		}
	}
	return out
}

// Store is the tiered session store. Storage failures are logged and never
// returned.
type Store struct {
	tiers  []Tier
	clear  []Tier
	logger logging.Logger
}

// New builds a Store over an explicit tier list.
func New(tiers []Tier, l logging.Logger) *Store {
	if l == nil {
		l = logging.Nop()
	}
	return &Store{tiers: tiers, clear: tiers, logger: l.With("module", "session")}
}

// NewForProfile builds the tiers of profile. Clear still reaches every
// configured medium so a profile switch cannot leave a stale session behind.
func NewForProfile(p Profile, m Media, l logging.Logger) *Store {
	s := New(TiersFor(p, m), l)
	s.clear = TiersFor(ProfileMobile, m)
	return s
}

// Tiers returns the active tiers in recovery order.
func (s *Store) Tiers() []Tier {
	return append([]Tier(nil), s.tiers...)
}

// Save writes u to every active tier. A failing tier does not stop the
// others.
func (s *Store) Save(ctx context.Context, u models.User) {
	data, err := json.Marshal(u)
	if err != nil {
		s.logger.Error(ctx, "failed to encode session", "error", err)
		return
	}

	for _, t := range s.tiers {
		if err := t.Store.Set(ctx, t.Key, data); err != nil {
			s.logger.Warn(ctx, "session write skipped", "tier", t.Name, "error", err)
		}
	}
}

// Get returns the current session or nil. The first tier holding a
// decodable record with id, email and profession wins and the record is
// written back to every tier before it. Anything else is a miss.
func (s *Store) Get(ctx context.Context) *models.User {
	for i, t := range s.tiers {
		data, err := t.Store.Get(ctx, t.Key)
		if err != nil {
			s.logger.Warn(ctx, "session read failed, tier treated as empty", "tier", t.Name, "error", err)
			continue
		}
		if len(data) == 0 {
			continue
		}

		var u models.User
		if err := json.Unmarshal(data, &u); err != nil {
			s.logger.Warn(ctx, "corrupt session record ignored", "tier", t.Name, "error", err)
			continue
		}
		if !u.HasRequiredFields() {
			s.logger.Warn(ctx, "incomplete session record ignored", "tier", t.Name)
			continue
		}

		if i > 0 {
			s.logger.Info(ctx, "session recovered", "tier", t.Name)
			s.backfill(ctx, s.tiers[:i], data)
		}
		return &u
	}
	return nil
}

func (s *Store) backfill(ctx context.Context, tiers []Tier, data []byte) {
	for _, t := range tiers {
		if err := t.Store.Set(ctx, t.Key, data); err != nil {
			s.logger.Warn(ctx, "session repair skipped", "tier", t.Name, "error", err)
		}
	}
}

// Clear removes the session from every tier. It is idempotent.
func (s *Store) Clear(ctx context.Context) {
	for _, t := range s.clear {
		if err := t.Store.Delete(ctx, t.Key); err != nil {
			s.logger.Warn(ctx, "session delete skipped", "tier", t.Name, "error", err)
		}
	}
}

// Has reports whether any tier holds a session.
func (s *Store) Has(ctx context.Context) bool {
	return s.Get(ctx) != nil
}

// Valid reports whether u carries id, email and profession. Anything else
// read from storage is not a session.
func Valid(u *models.User) bool {
	return u.HasRequiredFields()
}

// Current returns the session only when it is valid.
func (s *Store) Current(ctx context.Context) *models.User {
	u := s.Get(ctx)
	if !Valid(u) {
		return nil
	}
	return u
}
