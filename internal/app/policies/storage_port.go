package policies

import (
	"context"
	"io"
)

// ImageStore persists listing images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectKey string, body io.Reader, contentType string) (string, error)
}
