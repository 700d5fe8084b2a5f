package session

import (
	"context"

	"github.com/cha-revelacao/guest-sync/internal/domain"
)

// Storage keys. The flat legacy keys predate the profile record and are only
// read once at startup to adopt pre-existing data.
const (
	profileKey = "userProfile"
	sessionKey = "session"

	legacyNameKey  = "userName"
	legacyPhotoKey = "userPhoto"
	legacyEmailKey = "userEmail"
	legacyTokenKey = "token"
)

// placeholderEmail is assigned to profiles synthesized from legacy records
// that never stored an email address.
const placeholderEmail = "usuario@local.com"

const defaultAvatar = "assets/avatar-1.jpg"

//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=mocks/mock.go

// Store persists the single active guest identity and its bearer session.
// Read paths swallow storage failures: a missing or corrupt record is
// indistinguishable from an absent one.
type Store interface {
	// SaveProfile overwrites the stored profile. No validation is applied.
	SaveProfile(ctx context.Context, profile domain.UserProfile) error

	// Profile returns nil on a missing or malformed stored value.
	Profile(ctx context.Context) *domain.UserProfile

	// EmailTaken reports whether the locally cached profile already claims
	// the given email. A soft collision check only.
	EmailTaken(ctx context.Context, email string) bool

	// SaveSession stores a server-issued token with its expiry.
	SaveSession(ctx context.Context, token string, expiresAtMillis int64) (domain.Session, error)

	// Start creates a local session with a generated opaque token valid for
	// the given number of hours.
	Start(ctx context.Context, hours int) (domain.Session, error)

	// Current returns nil on a missing or malformed stored session.
	Current(ctx context.Context) *domain.Session

	// IsValid reports whether a session exists and is unexpired. Pure read.
	IsValid(ctx context.Context) bool

	// LogoutAll clears the session, the profile and any legacy keys.
	// Idempotent.
	LogoutAll(ctx context.Context) error

	// SyncUserData adopts data from the legacy flat keys once, then removes
	// them. Returns true when a profile exists afterwards.
	SyncUserData(ctx context.Context) bool
}
