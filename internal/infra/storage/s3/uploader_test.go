package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeyKeepsExtension(t *testing.T) {
	key := ObjectKey("7", "Room Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "listings/7/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.NotEqual(t, key, ObjectKey("7", "Room Photo.JPG"))
}

func TestNewClientValidatesOptions(t *testing.T) {
	_, err := NewClient(Options{Bucket: "b"}, nil)
	assert.Error(t, err)
	_, err = NewClient(Options{Endpoint: "http://localhost:9000"}, nil)
	assert.Error(t, err)
}

func TestObjectURLUsesPublicEndpoint(t *testing.T) {
	c, err := NewClient(Options{
		Endpoint:       "http://minio:9000",
		PublicEndpoint: "https://cdn.example.com/",
		Bucket:         "pg-images",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/pg-images/listings/1/a.png", c.objectURL("/listings/1/a.png"))
}

func TestNoopUploaderFails(t *testing.T) {
	_, err := NoopUploader{}.Upload(context.Background(), "k", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
