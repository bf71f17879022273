package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyImage(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		kind    ImageKind
		subtype string
	}{
		{"empty", "", ImageNone, ""},
		{"whitespace", "   ", ImageNone, ""},
		{"url", "https://example.com/cat.png", ImageURL, ""},
		{"url without image extension", "https://example.com/page", ImageURL, ""},
		{"inline png", inlinePNG, ImageInline, "png"},
		{"inline webp", "data:image/webp;base64,UklGRg==", ImageInline, "webp"},
		{"inline svg is not accepted", "data:image/svg+xml;base64,PHN2Zz4=", ImageURL, ""},
		{"plain text", "not an image", ImageInvalid, ""},
		{"relative path", "/images/cat.png", ImageInvalid, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := ClassifyImage(tt.raw)
			assert.Equal(t, tt.kind, source.Kind)
			assert.Equal(t, tt.subtype, source.Subtype)
		})
	}
}

func TestImageNormalizer_Normalize(t *testing.T) {
	ctx := context.Background()

	t.Run("absent image skips the store", func(t *testing.T) {
		store := &fakeStore{}
		url, err := NewImageNormalizer(store, 0).Normalize(ctx, "", "tasks")
		require.NoError(t, err)
		assert.Nil(t, url)
		assert.Equal(t, 0, store.Calls())
	})

	t.Run("url passes through unchanged", func(t *testing.T) {
		store := &fakeStore{}
		url, err := NewImageNormalizer(store, 0).Normalize(ctx, "https://example.com/a.png", "tasks")
		require.NoError(t, err)
		require.NotNil(t, url)
		assert.Equal(t, "https://example.com/a.png", *url)
		assert.Equal(t, 0, store.Calls())
	})

	t.Run("inline image is uploaded once", func(t *testing.T) {
		store := &fakeStore{}
		url, err := NewImageNormalizer(store, time.Second).Normalize(ctx, inlinePNG, "profile_pics")
		require.NoError(t, err)
		require.NotNil(t, url)
		assert.Equal(t, "https://cdn.example.com/profile_pics/fake.png", *url)
		assert.Equal(t, 1, store.Calls())
		assert.Equal(t, []string{"profile_pics"}, store.namespaces)
	})

	t.Run("upload failure carries the store error", func(t *testing.T) {
		store := &fakeStore{err: errors.New("bucket is gone")}
		_, err := NewImageNormalizer(store, 0).Normalize(ctx, inlinePNG, "tasks")

		var uploadErr *UploadError
		require.ErrorAs(t, err, &uploadErr)
		assert.Equal(t, "bucket is gone", uploadErr.Detail)
	})

	t.Run("invalid payload is a validation error", func(t *testing.T) {
		store := &fakeStore{}
		_, err := NewImageNormalizer(store, 0).Normalize(ctx, "not an image", "tasks")

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "image", validationErr.Field)
		assert.Equal(t, 0, store.Calls())
	})
}
