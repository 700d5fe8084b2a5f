package galleryimpl

import (
	"context"
	"mime"
	"path/filepath"
	"strings"

	"github.com/cha-revelacao/guest-sync/internal/domain"
	"github.com/cha-revelacao/guest-sync/internal/gallery"
	"github.com/cha-revelacao/guest-sync/internal/media"
	apperrors "github.com/cha-revelacao/guest-sync/pkg/errors"
)

// Submit sequences media before persistence: a post is never written, local
// or remote, while its upload is still in flight. The local cache write is
// unconditional; the remote create is best-effort.
func (g *GalleryImpl) Submit(ctx context.Context, sub gallery.Submission) (domain.GalleryPost, error) {
	if strings.TrimSpace(sub.Message) == "" && len(sub.Photo) == 0 && len(sub.Video) == 0 {
		return domain.GalleryPost{}, gallery.ErrEmptySubmission
	}

	now := g.now()
	post := domain.GalleryPost{
		ID:        now.UnixMilli(), // surrogate key until the server assigns one
		UserName:  anonymousName,
		UserPhoto: anonymousAvatar,
		Message:   sub.Message,
		Date:      now,
	}
	if profile := g.Sessions.Profile(ctx); profile != nil {
		if profile.Name != "" {
			post.UserName = profile.Name
		}
		if profile.Photo != "" {
			post.UserPhoto = profile.Photo
		}
		post.UserEmail = profile.Email
	}

	if !g.limiter.Allow(g.limiterKey(post)) {
		return domain.GalleryPost{}, gallery.ErrRateLimited
	}

	if len(sub.Photo) > 0 {
		resized, err := g.Media.ResizeGalleryImage(sub.Photo)
		if err != nil {
			return domain.GalleryPost{}, err
		}
		url, err := g.Api.UploadImage(ctx, sub.PhotoName, resized)
		switch {
		case err == nil:
			post.Photo = url
		case apperrors.IsUnreachable(err):
			g.Logger.Info("Server unreachable, embedding photo locally")
			post.Photo = media.DataURI("image/jpeg", resized)
		default:
			return domain.GalleryPost{}, err
		}
	}

	if len(sub.Video) > 0 {
		url, err := g.Api.UploadVideo(ctx, sub.VideoName, sub.Video)
		switch {
		case err == nil:
			post.Video = url
		case apperrors.IsUnreachable(err):
			g.Logger.Info("Server unreachable, embedding video locally")
			post.Video = media.DataURI(videoMime(sub.VideoName), sub.Video)
		default:
			return domain.GalleryPost{}, err
		}
	}

	if err := g.Cache.Prepend(ctx, post); err != nil {
		g.Logger.Warn("Failed to cache the post locally", "error", err)
	}

	if created, err := g.Api.CreatePost(ctx, post); err != nil {
		g.Logger.Warn("Post saved locally but not synced", "id", post.ID, "error", err)
	} else {
		g.Logger.Debug("Post synced", "local_id", post.ID, "remote_id", created.ID)
	}

	return post, nil
}

func (g *GalleryImpl) limiterKey(post domain.GalleryPost) string {
	if post.UserEmail != "" {
		return strings.ToLower(post.UserEmail)
	}
	return post.UserName
}

func videoMime(filename string) string {
	if t := mime.TypeByExtension(filepath.Ext(filename)); t != "" {
		return t
	}
	return "video/mp4"
}
