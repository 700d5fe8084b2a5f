package galleryimpl

import (
	"context"
	"strings"

	"github.com/cha-revelacao/guest-sync/internal/domain"
	"github.com/cha-revelacao/guest-sync/internal/gallery"
)

// IsCurrentUserOwner accepts any of: stored email matches the active
// profile's, the id is a local surrogate (never server-issued), or the
// stored name matches the profile's. The two weaker rules keep records from
// before the email field deletable.
func (g *GalleryImpl) IsCurrentUserOwner(ctx context.Context, post domain.GalleryPost) bool {
	profile := g.Sessions.Profile(ctx)

	if profile != nil && post.UserEmail != "" &&
		strings.EqualFold(post.UserEmail, profile.Email) {
		return true
	}
	if post.LocalOnly() {
		return true
	}
	if profile != nil && profile.Name != "" && post.UserName == profile.Name {
		return true
	}
	return false
}

// Remove applies the optimistic delete: the local copy goes away immediately
// and stays away even when the remote delete fails. The failed remote call
// is queued for the reconciliation sweep instead of rolling anything back.
func (g *GalleryImpl) Remove(ctx context.Context, post domain.GalleryPost) error {
	if !g.IsCurrentUserOwner(ctx, post) {
		return gallery.ErrNotOwner
	}

	if err := g.Cache.Remove(ctx, post.ID); err != nil {
		g.Logger.Warn("Failed to remove the post from the local cache", "id", post.ID, "error", err)
	}

	if post.LocalOnly() {
		return nil
	}

	if err := g.Api.DeletePost(ctx, post.ID); err != nil {
		g.Logger.Warn("Remote delete failed, queueing for the sweep", "id", post.ID, "error", err)
		if err := g.Cache.EnqueuePendingDelete(ctx, post.ID); err != nil {
			g.Logger.Error("Failed to queue the pending delete", "id", post.ID, "error", err)
		}
	}
	return nil
}
