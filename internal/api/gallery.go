package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cha-revelacao/guest-sync/internal/domain"
	apperrors "github.com/cha-revelacao/guest-sync/pkg/errors"
	"github.com/cha-revelacao/guest-sync/pkg/retry"
)

type galeriaUsuarioDTO struct {
	ID         int64  `json:"id"`
	Nome       string `json:"nome"`
	Email      string `json:"email"`
	FotoPerfil string `json:"fotoPerfil"`
}

type galeriaPostDTO struct {
	ID          int64              `json:"id"`
	Mensagem    string             `json:"mensagem"`
	UrlFoto     string             `json:"urlFoto"`
	UrlVideo    string             `json:"urlVideo"`
	DataCriacao string             `json:"dataCriacao"`
	Usuario     *galeriaUsuarioDTO `json:"usuario"`
}

type createPostRequest struct {
	Mensagem string `json:"mensagem"`
	UrlFoto  string `json:"urlFoto,omitempty"`
	UrlVideo string `json:"urlVideo,omitempty"`
	EventoID int64  `json:"eventoId"`
}

func (c *HttpImpl) ListPosts(ctx context.Context) ([]domain.GalleryPost, error) {
	var dtos []galeriaPostDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/galeria", nil, &dtos, true); err != nil {
		return nil, err
	}
	return mapPosts(dtos), nil
}

// ListPostsByEvent is the preferred listing; the unscoped one is only a
// fallback.
func (c *HttpImpl) ListPostsByEvent(ctx context.Context, eventID int64) ([]domain.GalleryPost, error) {
	var dtos []galeriaPostDTO
	path := fmt.Sprintf("/api/galeria/evento/%d", eventID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &dtos, true); err != nil {
		return nil, err
	}
	return mapPosts(dtos), nil
}

// CreatePost resolves the canonical event, submits, and on "event not found"
// recreates the canonical event once and retries exactly once with the new
// id. Transient failures of the underlying call are retried with a fixed
// delay.
func (c *HttpImpl) CreatePost(ctx context.Context, post domain.GalleryPost) (domain.GalleryPost, error) {
	eventID, err := c.EnsureValidEvent(ctx)
	if err != nil {
		return domain.GalleryPost{}, err
	}

	created, err := c.createPostOnce(ctx, post, eventID)
	if !apperrors.IsNotFound(err) {
		return created, err
	}

	c.logger.Warn("Canonical event rejected, recreating it", "event_id", eventID)
	c.invalidateEvent(ctx)

	eventID, err = c.EnsureValidEvent(ctx)
	if err != nil {
		return domain.GalleryPost{}, err
	}
	return c.createPostOnce(ctx, post, eventID)
}

func (c *HttpImpl) createPostOnce(ctx context.Context, post domain.GalleryPost, eventID int64) (domain.GalleryPost, error) {
	req := createPostRequest{
		Mensagem: post.Message,
		UrlFoto:  post.Photo,
		UrlVideo: post.Video,
		EventoID: eventID,
	}

	var dto galeriaPostDTO
	err := retry.DoFixed(ctx, c.logger, "create gallery post", func() error {
		err := c.doJSON(ctx, http.MethodPost, "/api/galeria", req, &dto, true)
		if err != nil && !apperrors.IsTransient(err) {
			return retry.Permanent(err)
		}
		return err
	}, writeRetryAttempts, writeRetryInterval)
	if err != nil {
		return domain.GalleryPost{}, err
	}
	return dto.toDomain(), nil
}

// DeletePost is idempotent-intended: a post already gone counts as deleted.
func (c *HttpImpl) DeletePost(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/galeria/%d", id)
	err := retry.DoFixed(ctx, c.logger, "delete gallery post", func() error {
		err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, true)
		if err != nil && !apperrors.IsTransient(err) {
			return retry.Permanent(err)
		}
		return err
	}, writeRetryAttempts, writeRetryInterval)

	if apperrors.IsNotFound(err) {
		return nil
	}
	return err
}

func mapPosts(dtos []galeriaPostDTO) []domain.GalleryPost {
	posts := make([]domain.GalleryPost, 0, len(dtos))
	for _, dto := range dtos {
		posts = append(posts, dto.toDomain())
	}
	return posts
}

func (d galeriaPostDTO) toDomain() domain.GalleryPost {
	post := domain.GalleryPost{
		ID:      d.ID,
		Photo:   d.UrlFoto,
		Video:   d.UrlVideo,
		Message: d.Mensagem,
		Date:    parseApiTime(d.DataCriacao),
	}
	if d.Usuario != nil {
		post.UserName = d.Usuario.Nome
		post.UserPhoto = d.Usuario.FotoPerfil
		post.UserEmail = d.Usuario.Email
	}
	return post
}
