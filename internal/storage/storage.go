// Package storage holds product images in a blob store.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
)

// KeyPrefix is the folder every product image is stored under.
const KeyPrefix = "products/"

// Store defines blob storage operations for product images.
type Store interface {
	// Upload stores an image under a fresh key.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// GetURL returns the public URL for key.
	GetURL(key string) string

	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is stored.
	Exists(ctx context.Context, key string) (bool, error)
}

// UploadInput holds the parameters for uploading an image.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	ID  uuid.UUID
	Key string
	URL string
}

// Validate rejects empty bodies and non-image content types.
func (in *UploadInput) Validate() error {
	if in == nil || in.Data == nil || in.Size <= 0 {
		return apperrors.InvalidInput("image file is empty")
	}
	if !strings.HasPrefix(strings.ToLower(in.ContentType), "image/") {
		return apperrors.InvalidInput("only image files are allowed, got " + in.ContentType)
	}
	return nil
}

// NewKey returns "products/<id><ext>" with the extension of filename.
func NewKey(id uuid.UUID, filename string) string {
	return KeyPrefix + id.String() + strings.ToLower(path.Ext(filename))
}

// KeyFromURL extracts the object key from a URL built by GetURL.
func KeyFromURL(url string) (string, bool) {
	i := strings.LastIndex(url, "/"+KeyPrefix)
	if i < 0 {
		return "", false
	}
	return url[i+1:], true
}
