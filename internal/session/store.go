package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"math/big"
	mathrand "math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/cha-revelacao/guest-sync/internal/domain"
	"github.com/cha-revelacao/guest-sync/internal/localstore"
	"github.com/cha-revelacao/guest-sync/pkg/logger"
)

type Impl struct {
	store  localstore.Store
	logger logger.Logger

	// Injectable for tests.
	now      func() time.Time
	randRead func(b []byte) (int, error)
}

func New(store localstore.Store, logger logger.Logger) *Impl {
	return &Impl{
		store:    store,
		logger:   logger.WithComponent("SessionStore"),
		now:      time.Now,
		randRead: rand.Read,
	}
}

var _ Store = (*Impl)(nil)

func (s *Impl) SaveProfile(ctx context.Context, profile domain.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, profileKey, string(raw))
}

func (s *Impl) Profile(ctx context.Context) *domain.UserProfile {
	raw, ok, err := s.store.Get(ctx, profileKey)
	if err != nil || !ok {
		return nil
	}

	var profile domain.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil
	}
	return &profile
}

func (s *Impl) EmailTaken(ctx context.Context, email string) bool {
	profile := s.Profile(ctx)
	return profile != nil && profile.Email != "" &&
		strings.EqualFold(profile.Email, email)
}

func (s *Impl) SaveSession(ctx context.Context, token string, expiresAtMillis int64) (domain.Session, error) {
	session := domain.Session{Token: token, ExpiresAt: expiresAtMillis}
	raw, err := json.Marshal(session)
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.store.Set(ctx, sessionKey, string(raw)); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *Impl) Start(ctx context.Context, hours int) (domain.Session, error) {
	if hours <= 0 {
		hours = 4
	}
	expiresAt := s.now().Add(time.Duration(hours) * time.Hour).UnixMilli()
	return s.SaveSession(ctx, s.newToken(), expiresAt)
}

func (s *Impl) Current(ctx context.Context) *domain.Session {
	raw, ok, err := s.store.Get(ctx, sessionKey)
	if err != nil || !ok {
		return nil
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil
	}
	return &session
}

func (s *Impl) IsValid(ctx context.Context) bool {
	session := s.Current(ctx)
	return session != nil && session.ValidAt(s.now())
}

func (s *Impl) LogoutAll(ctx context.Context) error {
	keys := []string{sessionKey, profileKey, legacyNameKey, legacyPhotoKey, legacyEmailKey, legacyTokenKey}
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// SyncUserData bridges the historical flat-key schema. When a profile record
// exists it wins and the legacy keys are dropped; otherwise a profile is
// synthesized from whatever legacy keys remain. Either way only the profile
// record survives.
func (s *Impl) SyncUserData(ctx context.Context) bool {
	if s.Profile(ctx) != nil {
		s.removeLegacyKeys(ctx)
		return true
	}

	name, ok, err := s.store.Get(ctx, legacyNameKey)
	if err != nil || !ok || name == "" {
		return false
	}

	photo, _, _ := s.store.Get(ctx, legacyPhotoKey)
	if photo == "" {
		photo = defaultAvatar
	}
	email, _, _ := s.store.Get(ctx, legacyEmailKey)
	if email == "" {
		email = placeholderEmail
	}

	profile := domain.UserProfile{Name: name, Email: email, Photo: photo}
	if err := s.SaveProfile(ctx, profile); err != nil {
		s.logger.Warn("Failed to adopt legacy profile data", "error", err)
		return false
	}

	s.removeLegacyKeys(ctx)
	s.logger.Info("Adopted legacy profile data", "name", name)
	return true
}

func (s *Impl) removeLegacyKeys(ctx context.Context) {
	for _, key := range []string{legacyNameKey, legacyPhotoKey, legacyEmailKey, legacyTokenKey} {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to remove legacy key", "key", key, "error", err)
		}
	}
}

// newToken returns 16 cryptographically random bytes hex-encoded, falling
// back to a pseudo-random token when the secure source is unavailable.
func (s *Impl) newToken() string {
	buf := make([]byte, 16)
	if _, err := s.randRead(buf); err == nil {
		return hex.EncodeToString(buf)
	}

	s.logger.Warn("Secure random source unavailable, using pseudo-random token")
	n := mathrand.New(mathrand.NewSource(s.now().UnixNano())).Int63()
	return new(big.Int).SetInt64(n).Text(36) + strconv.FormatInt(s.now().UnixMilli(), 36)
}
