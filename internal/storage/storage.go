package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ObjectStorage holds child documents (photos, birth certificates). Keys
// are stored on the owning record; the objects themselves never transit
// the database.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

var ErrNotConfigured = errors.New("storage: no object storage configured")

// Disabled stands in when no bucket is configured. Every call fails with
// ErrNotConfigured so document endpoints degrade instead of panicking.
type Disabled struct{}

func (Disabled) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return ErrNotConfigured
}

func (Disabled) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Delete(ctx context.Context, key string) error {
	return ErrNotConfigured
}
