// Package media stores images uploaded through the content management surface.
package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for uploads that are not a supported image format.
var ErrUnsupportedType = errors.New("unsupported media type")

// Storage persists an object and reports the public URL it is served from.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImageType sniffs the first bytes of an upload and returns its content
// type and canonical extension.
func DetectImageType(head []byte) (string, string, error) {
	contentType := http.DetectContentType(head)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", "", ErrUnsupportedType
	}
	return contentType, ext, nil
}

// NewObjectKey returns a collision-free key for an upload under folder.
func NewObjectKey(folder, ext string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "images"
	}
	return path.Join(folder, uuid.NewString()+ext)
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
