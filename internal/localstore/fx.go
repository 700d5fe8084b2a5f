package localstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cha-revelacao/guest-sync/pkg/config"
	"github.com/cha-revelacao/guest-sync/pkg/logger"
	"github.com/cha-revelacao/guest-sync/pkg/retry"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/fx"
)

type DBOpts struct {
	fx.In
	LC fx.Lifecycle

	Logger logger.Logger
	Config *config.Config
}

// NewDB opens the device-local SQLite database and manages its lifecycle.
func NewDB(opts DBOpts) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", opts.Config.Storage.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	// Single shared mutable store, single-writer assumption.
	db.SetMaxOpenConns(1)

	opts.LC.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				// The file can be briefly locked by a previous run at boot.
				err := retry.Do(ctx, opts.Logger, "ping local database", func() error {
					return db.PingContext(ctx)
				}, retry.DefaultConfig())
				if err != nil {
					return fmt.Errorf("failed to ping local database: %w", err)
				}
				opts.Logger.Info("Opened local storage", "path", opts.Config.Storage.Path)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return db.Close()
			},
		},
	)

	return db, nil
}

var Module = fx.Options(
	fx.Provide(
		NewDB,
		fx.Annotate(
			NewSqlite,
			fx.As(new(Store)),
		),
	),
)
