package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

type MinioStore struct {
	client        *minio.Client
	bucket        string
	endpoint      string
	useSSL        bool
	publicBaseURL string
}

func NewMinioStore(cfg config.ImageStoreConfig) (*MinioStore, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Endpoint == "" {
		return nil, errors.New("endpoint, bucket, access key and secret key are required for MinIO")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinioStore{
		client:        client,
		bucket:        cfg.Bucket,
		endpoint:      cfg.Endpoint,
		useSSL:        cfg.UseSSL,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

func (m *MinioStore) Upload(ctx context.Context, payload, namespace string) (*UploadResult, error) {
	img, err := DecodeDataURI(payload)
	if err != nil {
		return nil, err
	}

	key, err := utils.GenerateObjectKey(namespace, img.Subtype)
	if err != nil {
		return nil, err
	}

	_, err = m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(img.Data), int64(len(img.Data)), minio.PutObjectOptions{
		ContentType: img.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object: %w", err)
	}

	return &UploadResult{SecureURL: m.URL(key), Key: key}, nil
}

func (m *MinioStore) URL(key string) string {
	if m.publicBaseURL != "" {
		return objectURL(m.publicBaseURL, key)
	}
	scheme := "http"
	if m.useSSL {
		scheme = "https"
	}
	return objectURL(fmt.Sprintf("%s://%s/%s", scheme, m.endpoint, m.bucket), key)
}
