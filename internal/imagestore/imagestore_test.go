package imagestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/config"
)

func TestMatchInlineImage(t *testing.T) {
	subtype, ok := MatchInlineImage("data:image/webp;base64,AAAA")
	require.True(t, ok)
	require.Equal(t, "webp", subtype)

	_, ok = MatchInlineImage("data:image/svg+xml;base64,AAAA")
	require.False(t, ok)

	_, ok = MatchInlineImage("https://example.com/a.png")
	require.False(t, ok)
}

func TestDecodeDataURI(t *testing.T) {
	img, err := DecodeDataURI("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	require.Equal(t, "png", img.Subtype)
	require.Equal(t, "image/png", img.ContentType)
	require.Equal(t, []byte("hello"), img.Data)

	_, err = DecodeDataURI("data:image/png;base64,!!!")
	require.Error(t, err)

	_, err = DecodeDataURI("data:image/png;base64,")
	require.Error(t, err)

	_, err = DecodeDataURI("plain text")
	require.ErrorIs(t, err, ErrNotInlineImage)
}

func TestNew_DisabledStore(t *testing.T) {
	store, err := New(context.Background(), config.ImageStoreConfig{})
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "data:image/png;base64,AAAA", "tasks")
	require.ErrorIs(t, err, ErrStoreNotConfigured)
}

func TestNew_RejectsIncompleteConfig(t *testing.T) {
	_, err := New(context.Background(), config.ImageStoreConfig{Provider: "s3"})
	require.Error(t, err)

	_, err = New(context.Background(), config.ImageStoreConfig{Provider: "minio", Bucket: "b"})
	require.Error(t, err)

	_, err = New(context.Background(), config.ImageStoreConfig{Provider: "ftp"})
	require.Error(t, err)
}

func TestStoreURLs(t *testing.T) {
	s3Store, err := NewS3Store(context.Background(), config.ImageStoreConfig{
		Bucket:    "media",
		Region:    "eu-west-1",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	require.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/tasks/a.png", s3Store.URL("tasks/a.png"))

	s3Store.publicBaseURL = "https://cdn.example.com/"
	require.Equal(t, "https://cdn.example.com/tasks/a.png", s3Store.URL("tasks/a.png"))

	minioStore, err := NewMinioStore(config.ImageStoreConfig{
		Endpoint:  "localhost:9000",
		Bucket:    "media",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000/media/profile_pics/b.jpg", minioStore.URL("profile_pics/b.jpg"))
}
