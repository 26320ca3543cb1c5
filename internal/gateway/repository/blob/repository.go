// Package blob stores raw version content that does not fit a text column
// (binary artifacts, large payloads). Versions reference blobs by URL.
package blob

import (
	"context"
	"errors"
)

type Store interface {
	// Put writes content under key and returns the stored blob's reference
	// URL for the version row.
	Put(ctx context.Context, key string, content []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	// GetURL returns a time-limited fetch URL for the blob, or "" when the
	// backend has no URL scheme.
	GetURL(ctx context.Context, key string) (string, error)
}

var ErrNotFound = errors.New("blob not found")
