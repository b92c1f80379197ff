// Package storage keeps uploaded deliverable files on an afero filesystem:
// the OS under a base directory in production, memory in tests.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/freelog/freelog/internal/log"
)

// ErrInvalidKey is returned for keys that would escape the store.
var ErrInvalidKey = errors.New("invalid storage key")

// Store saves files under slash-separated keys.
type Store struct {
	fs afero.Fs
}

// NewStore returns a store rooted at dir on the OS filesystem.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{fs: afero.NewBasePathFs(afero.NewOsFs(), dir)}, nil
}

// NewMemStore returns a store backed by memory.
func NewMemStore() *Store {
	return &Store{fs: afero.NewMemMapFs()}
}

func clean(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)
	if cleaned == "/" || cleaned != "/"+key {
		return "", ErrInvalidKey
	}
	return filepath.FromSlash(cleaned), nil
}

// Save writes r to key. The file is written under a temporary name and
// renamed into place once complete.
func (s *Store) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	name, err := clean(key)
	if err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(filepath.Dir(name), 0o750); err != nil {
		return 0, fmt.Errorf("failed to create upload dir: %w", err)
	}

	tmp := name + ".part"
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("failed to create upload: %w", err)
	}
	n, err := io.Copy(f, contextReader{ctx: ctx, r: r})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(tmp)
		return 0, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}

	log.Debug(log.CatStorage, "Stored upload", "key", key, "bytes", n)
	return n, nil
}

// Open returns a reader over the file at key.
func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, error) {
	name, err := clean(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	return f, nil
}

// Delete removes the file at key. Deleting a missing file is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	name, err := clean(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

// contextReader stops copying once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
