package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cha-revelacao/guest-sync/internal/domain"
	"github.com/cha-revelacao/guest-sync/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory localstore.Store for tests.
type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func newTestStore(t *testing.T) (*Impl, *memStore) {
	t.Helper()
	mem := newMemStore()
	return New(mem, logger.New(logger.Opts{Env: "test"})), mem
}

func TestStartSessionIsImmediatelyValid(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	session, err := store.Start(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, session.Token, 32) // 16 bytes hex-encoded
	assert.Equal(t, now.Add(4*time.Hour).UnixMilli(), session.ExpiresAt)
	assert.True(t, store.IsValid(ctx))

	// Advance past the lifetime.
	store.now = func() time.Time { return now.Add(4*time.Hour + time.Second) }
	assert.False(t, store.IsValid(ctx))
}

func TestIsValidMatchesExpiry(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	cases := []struct {
		name      string
		expiresAt int64
		want      bool
	}{
		{"future expiry", now.Add(time.Minute).UnixMilli(), true},
		{"past expiry", now.Add(-time.Minute).UnixMilli(), false},
		{"exactly now", now.UnixMilli(), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.SaveSession(ctx, "token", tc.expiresAt)
			require.NoError(t, err)
			assert.Equal(t, tc.want, store.IsValid(ctx))
		})
	}
}

func TestIsValidWithoutSession(t *testing.T) {
	store, _ := newTestStore(t)
	assert.False(t, store.IsValid(context.Background()))
}

func TestTokenFallsBackWithoutSecureSource(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.randRead = func(b []byte) (int, error) {
		return 0, errors.New("no entropy")
	}

	session, err := store.Start(ctx, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
}

func TestProfileRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	assert.Nil(t, store.Profile(ctx))

	profile := domain.UserProfile{Name: "Ana", Email: "ana@example.com", Photo: "http://x/p.jpg"}
	require.NoError(t, store.SaveProfile(ctx, profile))

	got := store.Profile(ctx)
	require.NotNil(t, got)
	assert.Equal(t, profile, *got)
}

func TestProfileCorruptValueReadsAsAbsent(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()

	mem.values[profileKey] = "{not json"
	assert.Nil(t, store.Profile(ctx))
}

func TestEmailTaken(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, domain.UserProfile{Name: "Ana", Email: "ana@example.com"}))

	assert.True(t, store.EmailTaken(ctx, "ana@example.com"))
	assert.True(t, store.EmailTaken(ctx, "ANA@EXAMPLE.COM"))
	assert.False(t, store.EmailTaken(ctx, "outra@example.com"))
}

func TestLogoutAllIsIdempotent(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, domain.UserProfile{Name: "Ana", Email: "a@x.com"}))
	_, err := store.Start(ctx, 4)
	require.NoError(t, err)
	mem.values[legacyNameKey] = "Ana"
	mem.values[legacyTokenKey] = "old"

	require.NoError(t, store.LogoutAll(ctx))
	require.NoError(t, store.LogoutAll(ctx))

	assert.Nil(t, store.Profile(ctx))
	assert.Nil(t, store.Current(ctx))
	assert.Empty(t, mem.values)
}

func TestSyncUserDataAdoptsLegacyKeys(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()

	mem.values[legacyNameKey] = "João"
	mem.values[legacyPhotoKey] = "http://x/joao.jpg"

	assert.True(t, store.SyncUserData(ctx))

	profile := store.Profile(ctx)
	require.NotNil(t, profile)
	assert.Equal(t, "João", profile.Name)
	assert.Equal(t, "http://x/joao.jpg", profile.Photo)
	assert.Equal(t, placeholderEmail, profile.Email)

	// Legacy keys only feed the migration once.
	_, hasLegacy := mem.values[legacyNameKey]
	assert.False(t, hasLegacy)
}

func TestSyncUserDataPrefersExistingProfile(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, domain.UserProfile{Name: "Ana", Email: "a@x.com"}))
	mem.values[legacyNameKey] = "Outro Nome"

	assert.True(t, store.SyncUserData(ctx))

	profile := store.Profile(ctx)
	require.NotNil(t, profile)
	assert.Equal(t, "Ana", profile.Name)

	_, hasLegacy := mem.values[legacyNameKey]
	assert.False(t, hasLegacy)
}

func TestSyncUserDataWithNothingStored(t *testing.T) {
	store, _ := newTestStore(t)
	assert.False(t, store.SyncUserData(context.Background()))
}
