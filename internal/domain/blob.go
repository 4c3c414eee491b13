package domain

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes a stored content object.
type BlobInfo struct {
	ID          string // UUID assigned at write time
	SHA256      string // Hex digest computed while streaming
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

// BlobStore is content storage for resume files. Blobs are written exactly
// once and never updated; Remove exists only for the reconciliation sweep.
type BlobStore interface {
	// Put streams r into the store under a generated ID and returns the
	// metadata of the stored blob.
	Put(ctx context.Context, name, contentType string, r io.Reader) (*BlobInfo, error)
	// Open returns the blob metadata and a reader over its content.
	// Returns ErrBlobNotFound for an unknown ID.
	Open(ctx context.Context, id string) (*BlobInfo, io.ReadCloser, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]*BlobInfo, error)
}
