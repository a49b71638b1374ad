// Package resettokens persists the fallback password-reset tokens, one per
// email, under reset-token:<email>.
package resettokens

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/client/kv"
	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/common"
)

const tokenBytes = 32

type Store struct {
	kv  kv.ListerStore
	ttl time.Duration
	now func() time.Time
}

func New(store kv.ListerStore) *Store {
	return &Store{kv: store, ttl: models.ResetTokenTTL, now: time.Now}
}

// Issue mints a token for email, replacing any earlier one.
func (s *Store) Issue(ctx context.Context, email string) (models.ResetToken, error) {
	tok, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return models.ResetToken{}, fmt.Errorf("token generation: %w", err)
	}

	rt := models.ResetToken{
		Token:  tok,
		Email:  common.NormalizeEmail(email),
		Expiry: s.now().Add(s.ttl),
	}

	data, err := json.Marshal(rt)
	if err != nil {
		return models.ResetToken{}, err
	}
	if err := s.kv.Set(ctx, common.ResetTokenKey(email), data); err != nil {
		return models.ResetToken{}, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return rt, nil
}

// Lookup finds the token without consuming it. Unknown and expired tokens
// both yield common.ErrInvalidOrExpiredToken; an expired one is removed.
func (s *Store) Lookup(ctx context.Context, token string) (models.ResetToken, error) {
	if token == "" {
		return models.ResetToken{}, common.ErrInvalidOrExpiredToken
	}

	all, err := s.kv.List(ctx, common.KeyResetTokenPrefix)
	if err != nil {
		return models.ResetToken{}, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	for key, data := range all {
		var rt models.ResetToken
		if err := json.Unmarshal(data, &rt); err != nil {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(rt.Token), []byte(token)) != 1 {
			continue
		}
		if rt.Email == "" {
			rt.Email = strings.TrimPrefix(key, common.KeyResetTokenPrefix)
		}
		if rt.Expired(s.now()) {
			_ = s.kv.Delete(ctx, key)
			return models.ResetToken{}, common.ErrInvalidOrExpiredToken
		}
		return rt, nil
	}

	return models.ResetToken{}, common.ErrInvalidOrExpiredToken
}

// Consume validates the token and deletes it, so it works exactly once.
func (s *Store) Consume(ctx context.Context, token string) (models.ResetToken, error) {
	rt, err := s.Lookup(ctx, token)
	if err != nil {
		return models.ResetToken{}, err
	}
	if err := s.kv.Delete(ctx, common.ResetTokenKey(rt.Email)); err != nil {
		return models.ResetToken{}, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return rt, nil
}

// Discard drops any pending token of email.
func (s *Store) Discard(ctx context.Context, email string) error {
	return s.kv.Delete(ctx, common.ResetTokenKey(email))
}
