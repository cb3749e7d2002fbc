package core

import (
	"context"
	"io"
)

// FileStore is any storage that can keep uploaded files.
// Paths are relative to the store's root and always use forward slashes.
type FileStore interface {
	// Save stores content under dir, named after filename (made unique if needed), and returns its path.
	Save(ctx context.Context, dir, filename string, content io.Reader) (string, error)
	Open(path string) (io.ReadCloser, error)
	Delete(path string) error
}
