package application

import (
	"context"
	"io"
)

// FileStore keeps uploaded deliverable files addressed by key.
type FileStore interface {
	// Save writes r under key and returns the number of bytes written.
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
