package blob_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sokocrafts/sokoni/internal/blob"
)

func TestFileStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := blob.NewFileStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	ctx := context.Background()

	handle, err := s.Put(ctx, []byte("image bytes"), "photo.png")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(handle, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, "uploads", handle))
	require.NoError(t, err)
	require.Equal(t, []byte("image bytes"), data)

	require.NoError(t, s.Delete(ctx, handle))
	_, err = os.Stat(filepath.Join(dir, "uploads", handle))
	require.True(t, os.IsNotExist(err))

	// Deleting the same handle again is a success.
	require.NoError(t, s.Delete(ctx, handle))
}

func TestFileStoreHandleWithoutExtension(t *testing.T) {
	s, err := blob.NewFileStore(t.TempDir())
	require.NoError(t, err)

	handle, err := s.Put(context.Background(), []byte("bytes"), "no-extension")
	require.NoError(t, err)
	require.False(t, strings.Contains(handle, "."))
}
