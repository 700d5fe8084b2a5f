package galleryimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/cha-revelacao/guest-sync/internal/domain"
	"github.com/go-co-op/gocron/v2"
)

// StartSweep schedules the reconciliation job: replay queued remote deletes
// and refresh the local mirror whenever the server is reachable.
func (g *GalleryImpl) StartSweep(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create sweep scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(g.Config.Sync.SweepInterval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			g.sweep(sweepCtx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule reconciliation sweep: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		g.Logger.Info("Stopping reconciliation sweep")
		if err := scheduler.Shutdown(); err != nil {
			g.Logger.Error("Failed to shut down sweep scheduler", "error", err)
		}
	}()

	return nil
}

func (g *GalleryImpl) sweep(ctx context.Context) {
	if !g.Api.TestConnection(ctx) {
		g.Logger.Debug("Sweep skipped, server unreachable")
		return
	}

	for _, id := range g.Cache.DrainPendingDeletes(ctx) {
		if err := g.Api.DeletePost(ctx, id); err != nil {
			g.Logger.Warn("Queued delete still failing", "id", id, "error", err)
			if err := g.Cache.EnqueuePendingDelete(ctx, id); err != nil {
				g.Logger.Error("Failed to requeue the pending delete", "id", id, "error", err)
			}
		}
	}

	eventID, err := g.Api.EnsureValidEvent(ctx)
	if err != nil {
		g.Logger.Warn("Sweep could not resolve the canonical event", "error", err)
		return
	}

	remote, err := g.Api.ListPostsByEvent(ctx, eventID)
	if err != nil {
		g.Logger.Warn("Sweep could not refresh the mirror", "error", err)
		return
	}

	// Local-only posts stay ahead of the server copy.
	var merged []domain.GalleryPost
	for _, post := range g.Cache.List(ctx) {
		if post.LocalOnly() {
			merged = append(merged, post)
		}
	}
	merged = append(merged, remote...)

	if err := g.Cache.ReplaceAll(ctx, merged); err != nil {
		g.Logger.Warn("Sweep could not persist the refreshed mirror", "error", err)
		return
	}
	g.Logger.Debug("Mirror refreshed", "posts", len(merged))
}
