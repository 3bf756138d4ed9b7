package server

import (
	"context"
	"io"
)

// BlobStore defines the interface for blob storage operations
type BlobStore interface {
	// Put uploads a blob under key with the declared content type and
	// returns a durable, publicly fetchable URL for it
	Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
}
