// Package storage stores uploaded product assets on a named disk.
//
// Two drivers are available:
//   - "local": a directory on the local filesystem (default)
//   - "s3": S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Boot once at startup, then write through the default disk:
//
//	storage.Connect()
//	_ = storage.Put(ctx, "products/images/3f2c.png", data, "image/png")
//	url := storage.URL("products/images/3f2c.png")
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get when nothing is stored at path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the driver interface. Paths are slash separated and relative to
// the disk root.
type Disk interface {
	// Put writes content to path, replacing any existing file.
	Put(ctx context.Context, path string, content []byte, contentType string) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL clients use to fetch path.
	URL(path string) string
}
