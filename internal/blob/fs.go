package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore keeps blobs as files under a single directory. Handles are
// generated names (uuid plus the original extension), so an uploaded
// file never collides with or overwrites another.
type FileStore struct {
	dir string
}

// NewFileStore creates the upload directory if needed and returns a
// store writing into it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Put(_ context.Context, data []byte, originalName string) (string, error) {
	handle := uuid.NewString() + extensionOf(originalName)
	path := filepath.Join(s.dir, handle)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store file %s: %w", handle, err)
	}
	return handle, nil
}

func (s *FileStore) Delete(_ context.Context, handle string) error {
	// The handle came from Put; Base strips anything path-like that a
	// corrupted record could smuggle in.
	path := filepath.Join(s.dir, filepath.Base(handle))

	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", handle, err)
	}
	return nil
}

func extensionOf(name string) string {
	if !strings.Contains(name, ".") {
		return ""
	}
	return filepath.Ext(name)
}
