package localstore

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/cha-revelacao/guest-sync/pkg/config"
	"github.com/cha-revelacao/guest-sync/pkg/logger"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSqlite(t *testing.T, quota int64) *Sqlite {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE storage (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Storage.QuotaBytes = quota
	return NewSqlite(db, cfg, logger.New(logger.Opts{Env: "test"}))
}

func TestGetMissingKey(t *testing.T) {
	store := newTestSqlite(t, 1024)

	_, ok, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetGetRoundTrip(t *testing.T) {
	store := newTestSqlite(t, 1024)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "greeting", "olá"))

	value, ok, err := store.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "olá", value)
}

func TestSetOverwrites(t *testing.T) {
	store := newTestSqlite(t, 1024)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "first"))
	require.NoError(t, store.Set(ctx, "k", "second"))

	value, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestSetEnforcesQuota(t *testing.T) {
	store := newTestSqlite(t, 100)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", strings.Repeat("x", 60)))

	err := store.Set(ctx, "b", strings.Repeat("y", 60))
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// Overwriting a key does not double-count its old value.
	require.NoError(t, store.Set(ctx, "a", strings.Repeat("z", 90)))

	// A rejected write leaves the store untouched.
	_, ok, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestSqlite(t, 1024)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
