package postcache

import (
	"context"

	"github.com/cha-revelacao/guest-sync/internal/domain"
)

const (
	postsKey          = "posts"
	pendingDeletesKey = "pendingDeletes"
)

// Tiers of the quota degrade ladder: keep everything, then the newest 10,
// then the newest 5, then nothing. Always a prefix of the same sequence.
var degradeTiers = []int{10, 5}

//go:generate go run go.uber.org/mock/mockgen -source=postcache.go -destination=mocks/mock.go

// Cache is the on-device fallback copy of the gallery, newest first.
type Cache interface {
	// List returns the cached posts with corrupted legacy entries filtered
	// out. Storage failures yield an empty list, never an error.
	List(ctx context.Context) []domain.GalleryPost

	// Prepend puts the post at the head of the sequence and persists through
	// the degrade ladder.
	Prepend(ctx context.Context, post domain.GalleryPost) error

	// ReplaceAll swaps the cached sequence for the given one, newest first,
	// persisting through the degrade ladder.
	ReplaceAll(ctx context.Context, posts []domain.GalleryPost) error

	// Remove drops the entry with the given id. Succeeds whether or not the
	// entry exists.
	Remove(ctx context.Context, id int64) error

	// Clear empties the cache. Idempotent.
	Clear(ctx context.Context) error

	// EnqueuePendingDelete records a remote delete that failed and should be
	// replayed by the reconciliation sweep.
	EnqueuePendingDelete(ctx context.Context, id int64) error

	// DrainPendingDeletes returns the queued ids and empties the queue.
	DrainPendingDeletes(ctx context.Context) []int64
}
