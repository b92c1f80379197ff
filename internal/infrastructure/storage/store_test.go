package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	n, err := s.Save(ctx, "d1/v1.pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	require.Equal(t, int64(8), n)

	rc, err := s.Open(ctx, "d1/v1.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "%PDF-1.7", string(data))

	require.NoError(t, s.Delete(ctx, "d1/v1.pdf"))
	require.NoError(t, s.Delete(ctx, "d1/v1.pdf"), "deleting twice is fine")
	_, err = s.Open(ctx, "d1/v1.pdf")
	require.Error(t, err)
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	for _, key := range []string{"", "../etc/passwd", "d1/../../x", "/abs", `d1\v1.pdf`, "d1/./v1.pdf"} {
		_, err := s.Save(ctx, key, strings.NewReader("x"))
		require.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestStore_CanceledContextLeavesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemStore()

	_, err := s.Save(ctx, "d1/v1.pdf", strings.NewReader("data"))
	require.ErrorIs(t, err, context.Canceled)
	_, err = s.Open(context.Background(), "d1/v1.pdf")
	require.Error(t, err)
}

func TestNewStore_WritesUnderDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewStore(dir)
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "d1/v1.png", strings.NewReader("png"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "d1", "v1.png"))
	require.NoError(t, err)
	require.Equal(t, "png", string(data))
	_, err = os.Stat(filepath.Join(dir, "d1", "v1.png.part"))
	require.True(t, os.IsNotExist(err))
}
