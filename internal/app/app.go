package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cha-revelacao/guest-sync/internal/api"
	"github.com/cha-revelacao/guest-sync/internal/gallery"
	"github.com/cha-revelacao/guest-sync/internal/gallery/galleryimpl"
	"github.com/cha-revelacao/guest-sync/internal/localstore"
	"github.com/cha-revelacao/guest-sync/internal/media"
	"github.com/cha-revelacao/guest-sync/internal/postcache"
	"github.com/cha-revelacao/guest-sync/internal/session"
	"github.com/cha-revelacao/guest-sync/pkg/config"
	"github.com/cha-revelacao/guest-sync/pkg/logger"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"

	_ "github.com/cha-revelacao/guest-sync/internal/migrations"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		media.New,
	),
	localstore.Module,
	session.Module,
	postcache.Module,
	api.Module,
	fx.Provide(
		fx.Annotate(
			galleryimpl.New,
			fx.As(new(gallery.Controller)),
		),
	),
	fx.Invoke(migrate),
	fx.Invoke(run),
)

func migrate(db *sql.DB) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	return goose.Up(db, filepath.Join(wd, "internal", "migrations"))
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config,
	sessions session.Store, cache postcache.Cache, apiClient api.Client,
	controller gallery.Controller) {

	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go startHttpServer(log, cfg, sessions, cache, apiClient)

			if sessions.SyncUserData(runCtx) {
				log.Info("Guest profile present")
			} else {
				log.Info("No guest profile yet")
			}

			if err := controller.StartSweep(runCtx); err != nil {
				log.Error("Failed to start the reconciliation sweep", "error", err)
				return err
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func startHttpServer(log logger.Logger, cfg *config.Config,
	sessions session.Store, cache postcache.Cache, apiClient api.Client) {

	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Error("Failed to write response", "Error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	http.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := struct {
			Connected    bool `json:"connected"`
			SessionValid bool `json:"sessionValid"`
			CachedPosts  int  `json:"cachedPosts"`
		}{
			Connected:    apiClient.TestConnection(ctx),
			SessionValid: sessions.IsValid(ctx),
			CachedPosts:  len(cache.List(ctx)),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Error("Failed to write status", "Error", err)
		}
	})

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), nil); err != nil {
		log.Error("Server failed to start: %v", err)
	}
}
