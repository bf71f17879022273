// Package imagestore uploads inline images to object storage and returns the
// URL they can be served from.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/task-tracker-api/internal/config"
)

// ErrStoreNotConfigured is returned by the disabled store.
var ErrStoreNotConfigured = errors.New("image store is not configured")

// UploadResult is what the store hands back after a successful upload.
type UploadResult struct {
	SecureURL string
	Key       string
}

// Store uploads an inline-encoded image under a namespace.
type Store interface {
	Upload(ctx context.Context, payload, namespace string) (*UploadResult, error)
}

// New builds the store for the configured provider. An empty provider yields
// a store whose uploads always fail.
func New(ctx context.Context, cfg config.ImageStoreConfig) (Store, error) {
	switch cfg.Provider {
	case "":
		return disabledStore{}, nil
	case "s3", "aws", "aws-s3":
		return NewS3Store(ctx, cfg)
	case "minio":
		return NewMinioStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported image store provider: %s", cfg.Provider)
	}
}

type disabledStore struct{}

func (disabledStore) Upload(context.Context, string, string) (*UploadResult, error) {
	return nil, ErrStoreNotConfigured
}

// objectURL joins a base URL and an object key.
func objectURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
