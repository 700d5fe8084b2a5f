package api

import (
	"context"

	"github.com/cha-revelacao/guest-sync/internal/domain"
)

// AuthResult is the normalized outcome of a login or registration call.
type AuthResult struct {
	Token     string
	ExpiresAt int64 // epoch ms
	User      domain.UserProfile
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Photo    string
}

//go:generate go run go.uber.org/mock/mockgen -source=api.go -destination=mocks/mock.go

// Client wraps the party backend's REST API. Failures come back as the
// pkg/errors taxonomy; raw transport errors never cross this boundary.
type Client interface {
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetToken(ctx context.Context, token string) (bool, error)
	ResetPassword(ctx context.Context, token, newPassword string) error

	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)

	// EnsureValidEvent resolves the canonical event id: cached value first,
	// then the server's event list (title match, else highest id), else a
	// freshly created canonical event. Concurrent callers share a single
	// in-flight resolution.
	EnsureValidEvent(ctx context.Context) (int64, error)

	ListPosts(ctx context.Context) ([]domain.GalleryPost, error)
	ListPostsByEvent(ctx context.Context, eventID int64) ([]domain.GalleryPost, error)
	CreatePost(ctx context.Context, post domain.GalleryPost) (domain.GalleryPost, error)
	DeletePost(ctx context.Context, id int64) error

	UploadImage(ctx context.Context, filename string, data []byte) (string, error)
	UploadVideo(ctx context.Context, filename string, data []byte) (string, error)

	// TestConnection distinguishes "server up but rejecting this request"
	// (true) from "server unreachable" (false).
	TestConnection(ctx context.Context) bool
}
