package core

import (
	"context"
	"io"
)

// DocumentStore abstracts the blob storage used for uploaded documents (truck papers,
// scanned invoices...). The managed object-storage backend is a black box behind this
// interface; only the storage key is persisted alongside the document metadata.
type DocumentStore interface {
	// Save writes the content and returns the storage key it can be read back with.
	Save(ctx context.Context, key string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
