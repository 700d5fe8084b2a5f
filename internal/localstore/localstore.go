package localstore

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned by Set when the write would push the total
// stored payload over the configured byte budget. Callers that persist bulky
// values are expected to shed data and try again.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

//go:generate go run go.uber.org/mock/mockgen -source=localstore.go -destination=mocks/mock.go

// Store is a small key/value surface with localStorage-like semantics:
// string values under string keys, a hard capacity ceiling, and idempotent
// deletes.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
