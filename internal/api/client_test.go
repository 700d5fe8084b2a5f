package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cha-revelacao/guest-sync/internal/domain"
	"github.com/cha-revelacao/guest-sync/pkg/config"
	apperrors "github.com/cha-revelacao/guest-sync/pkg/errors"
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

// fakeSessions satisfies session.Store; the client only reads Current.
type fakeSessions struct {
	token string
}

func (f *fakeSessions) SaveProfile(context.Context, domain.UserProfile) error { return nil }
func (f *fakeSessions) Profile(context.Context) *domain.UserProfile           { return nil }
func (f *fakeSessions) EmailTaken(context.Context, string) bool               { return false }
func (f *fakeSessions) SaveSession(_ context.Context, token string, expiresAt int64) (domain.Session, error) {
	return domain.Session{Token: token, ExpiresAt: expiresAt}, nil
}
func (f *fakeSessions) Start(context.Context, int) (domain.Session, error) {
	return domain.Session{}, nil
}
func (f *fakeSessions) Current(context.Context) *domain.Session {
	if f.token == "" {
		return nil
	}
	return &domain.Session{Token: f.token, ExpiresAt: time.Now().Add(time.Hour).UnixMilli()}
}
func (f *fakeSessions) IsValid(context.Context) bool       { return f.token != "" }
func (f *fakeSessions) LogoutAll(context.Context) error    { return nil }
func (f *fakeSessions) SyncUserData(context.Context) bool  { return false }

func newTestClient(t *testing.T, baseURL string) (*HttpImpl, *memStore) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Api.BaseURL = baseURL
	cfg.Api.Timeout = 5 * time.Second
	cfg.Event.CanonicalTitle = "Chá Revelação"

	mem := newMemStore()
	client := New(Opts{
		Config:   cfg,
		Logger:   logger.New(logger.Opts{Env: "test"}),
		Sessions: &fakeSessions{token: "test-token"},
		Store:    mem,
	})
	return client, mem
}

func TestStatusErrorTaxonomy(t *testing.T) {
	cases := []struct {
		status int
		check  func(error) bool
		name   string
	}{
		{http.StatusUnauthorized, apperrors.IsUnauthorized, "unauthorized"},
		{http.StatusForbidden, apperrors.IsForbidden, "forbidden"},
		{http.StatusNotFound, apperrors.IsNotFound, "not found"},
		{http.StatusConflict, apperrors.IsConflict, "conflict"},
		{http.StatusBadRequest, apperrors.IsValidation, "validation"},
		{http.StatusInternalServerError, apperrors.IsInternalServer, "server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			client, _ := newTestClient(t, server.URL)
			_, err := client.ListPosts(context.Background())
			require.Error(t, err)
			assert.True(t, tc.check(err), "status %d mapped wrong: %v", tc.status, err)
		})
	}
}

func TestTransportFailureIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing listens anymore

	client, _ := newTestClient(t, server.URL)
	_, err := client.ListPosts(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsUnreachable(err))
}

func TestServerMessageIsSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message": "Este email já está em uso"}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	_, err := client.Register(context.Background(), RegisterRequest{Name: "Ana", Email: "a@x.com", Password: "s"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "Este email já está em uso", apperrors.GetMessage(err))
}

func TestConnectionRejectingServerIsReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	assert.True(t, client.TestConnection(context.Background()))
}

func TestConnectionDownServerIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, _ := newTestClient(t, server.URL)
	assert.False(t, client.TestConnection(context.Background()))
}

func TestAuthorizationHeaderOnAuthenticatedCalls(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	_, err := client.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", got)
}

func TestLoginMapsWireShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		_, _ = w.Write([]byte(`{"token": "jwt-abc", "usuario": {"nome": "Ana", "email": "ana@x.com", "fotoPerfil": "http://x/p.jpg"}}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	result, err := client.Login(context.Background(), "ana@x.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "jwt-abc", result.Token)
	assert.Equal(t, "Ana", result.User.Name)
	assert.Equal(t, "ana@x.com", result.User.Email)
	assert.Equal(t, "http://x/p.jpg", result.User.Photo)
	assert.Greater(t, result.ExpiresAt, time.Now().UnixMilli())
}

func TestVerifyResetToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/verificar-token", r.URL.Path)
		require.Equal(t, "abc 123", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(`{"valido": true}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	valid, err := client.VerifyResetToken(context.Background(), "abc 123")
	require.NoError(t, err)
	assert.True(t, valid)
}
