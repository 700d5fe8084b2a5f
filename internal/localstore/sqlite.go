package localstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cha-revelacao/guest-sync/pkg/config"
	"github.com/cha-revelacao/guest-sync/pkg/logger"
)

var sqBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

var ErrBadQuery = errors.New("bad query")

type Sqlite struct {
	db     *sql.DB
	quota  int64
	logger logger.Logger
}

func NewSqlite(db *sql.DB, cfg *config.Config, logger logger.Logger) *Sqlite {
	return &Sqlite{
		db:     db,
		quota:  cfg.Storage.QuotaBytes,
		logger: logger.WithComponent("LocalStore"),
	}
}

var _ Store = (*Sqlite)(nil)

func (s *Sqlite) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := sqBuilder.
		Select("value").
		From("storage").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", false, ErrBadQuery
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set upserts the value, refusing writes that would exceed the quota. The
// size check and the write share one transaction so concurrent writers
// cannot race past the budget.
func (s *Sqlite) Set(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := sqBuilder.
		Select("COALESCE(SUM(LENGTH(value)), 0)").
		From("storage").
		Where(sq.NotEq{"key": key}).
		ToSql()
	if err != nil {
		return ErrBadQuery
	}

	var used int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&used); err != nil {
		return err
	}

	if used+int64(len(value)) > s.quota {
		s.logger.Warn("Rejecting write over storage quota",
			"key", key,
			"used_bytes", used,
			"value_bytes", len(value),
			"quota_bytes", s.quota,
		)
		return ErrQuotaExceeded
	}

	query, args, err = sqBuilder.
		Insert("storage").
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now()).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return ErrBadQuery
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Sqlite) Delete(ctx context.Context, key string) error {
	query, args, err := sqBuilder.
		Delete("storage").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return ErrBadQuery
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}
