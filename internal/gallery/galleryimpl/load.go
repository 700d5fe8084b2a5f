package galleryimpl

import (
	"context"

	"github.com/cha-revelacao/guest-sync/internal/domain"
)

// Load degrades strictly toward more local data sources. Every stage runs at
// most once; a failed stage never aborts the load, it only narrows where the
// posts come from.
func (g *GalleryImpl) Load(ctx context.Context) []domain.GalleryPost {
	if !g.Api.TestConnection(ctx) {
		g.Logger.Info("Server unreachable, serving the local cache")
		return g.Cache.List(ctx)
	}

	eventID, err := g.Api.EnsureValidEvent(ctx)
	if err != nil {
		g.Logger.Warn("Could not resolve the canonical event, serving the local cache", "error", err)
		return g.Cache.List(ctx)
	}

	posts, err := g.Api.ListPostsByEvent(ctx, eventID)
	if err == nil {
		return posts
	}
	g.Logger.Warn("Event-scoped listing failed, trying the unscoped one", "event_id", eventID, "error", err)

	posts, err = g.Api.ListPosts(ctx)
	if err == nil {
		return posts
	}
	g.Logger.Warn("Remote listing failed, serving the local cache", "error", err)

	return g.Cache.List(ctx)
}
