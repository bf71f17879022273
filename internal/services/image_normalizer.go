package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/task-tracker-api/internal/imagestore"
)

// ImageKind tags what an image payload turned out to be.
type ImageKind int

const (
	ImageNone ImageKind = iota
	ImageURL
	ImageInline
	ImageInvalid
)

func (k ImageKind) String() string {
	switch k {
	case ImageNone:
		return "none"
	case ImageURL:
		return "url"
	case ImageInline:
		return "inline"
	default:
		return "invalid"
	}
}

// ImageSource is the classified form of a raw image payload.
type ImageSource struct {
	Kind    ImageKind
	Raw     string
	Subtype string
}

var fieldValidator = validator.New()

// ClassifyImage decides whether raw is absent, an absolute URL, an inline
// data URI image or something else. Data URIs are checked first because
// they also parse as URLs.
func ClassifyImage(raw string) ImageSource {
	if strings.TrimSpace(raw) == "" {
		return ImageSource{Kind: ImageNone}
	}
	if subtype, ok := imagestore.MatchInlineImage(raw); ok {
		return ImageSource{Kind: ImageInline, Raw: raw, Subtype: subtype}
	}
	if fieldValidator.Var(raw, "url") == nil {
		return ImageSource{Kind: ImageURL, Raw: raw}
	}
	return ImageSource{Kind: ImageInvalid, Raw: raw}
}

// ImageNormalizer resolves an image payload to the URL that gets stored.
type ImageNormalizer struct {
	store   imagestore.Store
	timeout time.Duration
}

// NewImageNormalizer creates an ImageNormalizer. A zero timeout leaves the
// caller's context deadline in charge.
func NewImageNormalizer(store imagestore.Store, timeout time.Duration) *ImageNormalizer {
	return &ImageNormalizer{
		store:   store,
		timeout: timeout,
	}
}

// Normalize returns nil for an absent image, the URL itself for a URL, and
// the store's URL for an inline image.
func (n *ImageNormalizer) Normalize(ctx context.Context, raw, namespace string) (*string, error) {
	source := ClassifyImage(raw)

	switch source.Kind {
	case ImageNone:
		return nil, nil
	case ImageURL:
		url := source.Raw
		return &url, nil
	case ImageInline:
		uploadCtx := ctx
		if n.timeout > 0 {
			var cancel context.CancelFunc
			uploadCtx, cancel = context.WithTimeout(ctx, n.timeout)
			defer cancel()
		}

		result, err := n.store.Upload(uploadCtx, source.Raw, namespace)
		if err != nil {
			return nil, &UploadError{Detail: err.Error(), Err: err}
		}
		url := result.SecureURL
		return &url, nil
	default:
		return nil, newValidationError("image", "must be a valid URL or base64 image string")
	}
}
