// Package storage keeps uploaded images, either on local disk or in an Azure
// Blob container.
package storage

import (
	"context"
	"fmt"
	"strings"

	"lexora/internal/common"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type ImageStore interface {
	// Put stores data under key and returns the URL clients should use.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

var allowedImageTypes = []struct {
	mime string
	ext  string
}{
	{"image/jpeg", ".jpg"},
	{"image/png", ".png"},
	{"image/gif", ".gif"},
	{"image/webp", ".webp"},
}

// DetectImage sniffs data and returns its MIME type and file extension.
// Anything other than JPEG, PNG, GIF or WEBP is a validation error.
func DetectImage(field string, data []byte) (string, string, error) {
	m := mimetype.Detect(data)
	for _, t := range allowedImageTypes {
		if m.Is(t.mime) {
			return t.mime, t.ext, nil
		}
	}
	return "", "", common.NewValidationError(field, "Only JPEG, PNG, GIF and WEBP images are allowed")
}

// SaveImage validates data as an image and stores it under a fresh
// collision-free key starting with prefix.
func SaveImage(ctx context.Context, store ImageStore, field, prefix string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", common.NewValidationError(field, "Uploaded file is empty")
	}
	contentType, ext, err := DetectImage(field, data)
	if err != nil {
		return "", err
	}
	key := strings.Trim(prefix, "/") + "-" + uuid.NewString() + ext
	url, err := store.Put(ctx, key, contentType, data)
	if err != nil {
		return "", fmt.Errorf("store image %s: %w", key, err)
	}
	return url, nil
}
