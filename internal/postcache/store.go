package postcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cha-revelacao/guest-sync/internal/domain"
	"github.com/cha-revelacao/guest-sync/internal/localstore"
	"github.com/cha-revelacao/guest-sync/pkg/logger"
)

type Impl struct {
	store  localstore.Store
	logger logger.Logger
}

func New(store localstore.Store, logger logger.Logger) *Impl {
	return &Impl{
		store:  store,
		logger: logger.WithComponent("PostCache"),
	}
}

var _ Cache = (*Impl)(nil)

// cachedPost keeps photo/video raw so that corrupted legacy records (rich
// objects where a URL string belongs) survive decoding and can be filtered
// entry by entry instead of poisoning the whole list.
type cachedPost struct {
	ID        int64           `json:"id"`
	UserName  string          `json:"userName"`
	UserPhoto string          `json:"userPhoto"`
	Photo     json.RawMessage `json:"photo,omitempty"`
	Video     json.RawMessage `json:"video,omitempty"`
	Message   string          `json:"message"`
	Date      string          `json:"date"`
	UserEmail string          `json:"userEmail,omitempty"`
}

func (i *Impl) List(ctx context.Context) []domain.GalleryPost {
	entries := i.load(ctx)

	posts := make([]domain.GalleryPost, 0, len(entries))
	for _, entry := range entries {
		post, ok := entry.toDomain()
		if !ok {
			i.logger.Debug("Dropping corrupted cache entry", "id", entry.ID)
			continue
		}
		posts = append(posts, post)
	}
	return posts
}

func (i *Impl) Prepend(ctx context.Context, post domain.GalleryPost) error {
	entries := i.load(ctx)
	entries = append([]cachedPost{fromDomain(post)}, entries...)
	return i.save(ctx, entries)
}

func (i *Impl) ReplaceAll(ctx context.Context, posts []domain.GalleryPost) error {
	entries := make([]cachedPost, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, fromDomain(post))
	}
	return i.save(ctx, entries)
}

func (i *Impl) Remove(ctx context.Context, id int64) error {
	entries := i.load(ctx)

	kept := entries[:0]
	for _, entry := range entries {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return i.save(ctx, kept)
}

func (i *Impl) Clear(ctx context.Context) error {
	return i.store.Delete(ctx, postsKey)
}

func (i *Impl) EnqueuePendingDelete(ctx context.Context, id int64) error {
	ids := i.pendingDeletes(ctx)
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	ids = append(ids, id)

	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return i.store.Set(ctx, pendingDeletesKey, string(raw))
}

func (i *Impl) DrainPendingDeletes(ctx context.Context) []int64 {
	ids := i.pendingDeletes(ctx)
	if len(ids) == 0 {
		return nil
	}
	if err := i.store.Delete(ctx, pendingDeletesKey); err != nil {
		i.logger.Warn("Failed to clear pending delete queue", "error", err)
	}
	return ids
}

func (i *Impl) pendingDeletes(ctx context.Context) []int64 {
	raw, ok, err := i.store.Get(ctx, pendingDeletesKey)
	if err != nil || !ok {
		return nil
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}

func (i *Impl) load(ctx context.Context) []cachedPost {
	raw, ok, err := i.store.Get(ctx, postsKey)
	if err != nil || !ok {
		return nil
	}

	var entries []cachedPost
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		i.logger.Warn("Cached post list is unreadable, treating as empty", "error", err)
		return nil
	}
	return entries
}

// save walks the degrade ladder on quota failures: the full sequence, then
// the newest 10, then the newest 5, then nothing at all. Every tier is a
// strict prefix of the same newest-first sequence.
func (i *Impl) save(ctx context.Context, entries []cachedPost) error {
	sizes := []int{len(entries)}
	for _, tier := range degradeTiers {
		if tier < sizes[len(sizes)-1] {
			sizes = append(sizes, tier)
		}
	}

	for _, size := range sizes {
		err := i.write(ctx, entries[:size])
		if err == nil {
			if size < len(entries) {
				i.logger.Warn("Storage quota forced the cache down", "kept", size, "had", len(entries))
			}
			return nil
		}
		if !errors.Is(err, localstore.ErrQuotaExceeded) {
			return err
		}
	}

	i.logger.Warn("Storage quota exhausted every tier, clearing the cache")
	return i.store.Delete(ctx, postsKey)
}

func (i *Impl) write(ctx context.Context, entries []cachedPost) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return i.store.Set(ctx, postsKey, string(raw))
}

// mediaString decodes a photo/video field. Legacy records stored rich
// objects or the stringified "[object Object]" where a URL belongs; both
// mark the entry as corrupted.
func mediaString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", true
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	if value == "[object Object]" {
		return "", false
	}
	return value, true
}

func (c cachedPost) toDomain() (domain.GalleryPost, bool) {
	photo, ok := mediaString(c.Photo)
	if !ok {
		return domain.GalleryPost{}, false
	}
	video, ok := mediaString(c.Video)
	if !ok {
		return domain.GalleryPost{}, false
	}

	date, err := time.Parse(time.RFC3339, c.Date)
	if err != nil {
		date = time.Time{}
	}

	return domain.GalleryPost{
		ID:        c.ID,
		UserName:  c.UserName,
		UserPhoto: c.UserPhoto,
		Photo:     photo,
		Video:     video,
		Message:   c.Message,
		Date:      date,
		UserEmail: c.UserEmail,
	}, true
}

func fromDomain(post domain.GalleryPost) cachedPost {
	entry := cachedPost{
		ID:        post.ID,
		UserName:  post.UserName,
		UserPhoto: post.UserPhoto,
		Message:   post.Message,
		Date:      post.Date.UTC().Format(time.RFC3339),
		UserEmail: post.UserEmail,
	}
	if post.Photo != "" {
		entry.Photo, _ = json.Marshal(post.Photo)
	}
	if post.Video != "" {
		entry.Video, _ = json.Marshal(post.Video)
	}
	return entry
}
