package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrInvalidObjectURL = errors.New("cannot derive object key from URL")

// FileStorage defines the interface for object storage operations on a single bucket.
type FileStorage interface {
	// Upload stores body under objectKey. size may be -1 when unknown.
	Upload(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) error

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error

	// PublicURL resolves the public URL of objectKey. It does no I/O.
	PublicURL(objectKey string) string

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}
