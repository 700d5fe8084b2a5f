package gallery

import (
	"context"
	"errors"

	"github.com/cha-revelacao/guest-sync/internal/domain"
)

var (
	// ErrNotOwner blocks deletion of a post the active guest does not own.
	ErrNotOwner = errors.New("post does not belong to the current user")

	// ErrEmptySubmission rejects a submission with neither text nor media.
	ErrEmptySubmission = errors.New("nothing to submit")

	// ErrRateLimited rejects a guest submitting too fast.
	ErrRateLimited = errors.New("too many submissions, slow down")
)

// Submission is the raw compose-form payload before the media pipeline runs.
type Submission struct {
	Message   string
	Photo     []byte
	PhotoName string
	Video     []byte
	VideoName string
}

//go:generate go run go.uber.org/mock/mockgen -source=gallery.go -destination=mocks/mock.go

// Controller reconciles the remote gallery with the local cache.
type Controller interface {
	// Load walks the cascading fallback chain: remote by event, remote
	// unscoped, local cache. Each stage runs at most once; the worst
	// outcome is an empty list, never an error.
	Load(ctx context.Context) []domain.GalleryPost

	// Submit runs the media pipeline, writes the local cache
	// unconditionally, then best-effort creates the post remotely.
	Submit(ctx context.Context, sub Submission) (domain.GalleryPost, error)

	// Remove deletes a post the active guest owns: optimistic local removal
	// first, remote delete best-effort with failures queued for the sweep.
	Remove(ctx context.Context, post domain.GalleryPost) error

	// IsCurrentUserOwner gates mutation of a post.
	IsCurrentUserOwner(ctx context.Context, post domain.GalleryPost) bool

	// StartSweep schedules the periodic reconciliation job until ctx ends.
	StartSweep(ctx context.Context) error
}
