package imagestore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
)

var inlineImagePattern = regexp.MustCompile(`^data:image/(png|jpeg|jpg|gif|webp);base64,`)

// ErrNotInlineImage is returned when a payload lacks an accepted data URI header.
var ErrNotInlineImage = errors.New("payload is not an inline image")

// InlineImage is a decoded data URI.
type InlineImage struct {
	Subtype     string
	ContentType string
	Data        []byte
}

// MatchInlineImage reports whether s starts with an accepted data URI header
// and returns the image subtype it names.
func MatchInlineImage(s string) (string, bool) {
	m := inlineImagePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DecodeDataURI splits a base64 data URI into its content type and bytes.
func DecodeDataURI(payload string) (*InlineImage, error) {
	loc := inlineImagePattern.FindStringSubmatchIndex(payload)
	if loc == nil {
		return nil, ErrNotInlineImage
	}

	subtype := payload[loc[2]:loc[3]]
	data, err := base64.StdEncoding.DecodeString(payload[loc[1]:])
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("image data is empty")
	}

	return &InlineImage{
		Subtype:     subtype,
		ContentType: "image/" + subtype,
		Data:        data,
	}, nil
}
