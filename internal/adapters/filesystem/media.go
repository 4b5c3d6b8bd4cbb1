// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/example/guidebook/internal/ports/secondary"
)

// MediaStore implements secondary.MediaStore on a local directory.
type MediaStore struct {
	dir string
}

// NewMediaStore creates a media store rooted at dir. The directory is created on first write.
func NewMediaStore(dir string) *MediaStore {
	return &MediaStore{dir: dir}
}

// Save writes data under fileName and returns the absolute path.
// An existing file with the same name is never overwritten.
func (s *MediaStore) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	if fileName == "" || filepath.Base(fileName) != fileName {
		return "", fmt.Errorf("invalid media file name %q", fileName)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	path, err := filepath.Abs(filepath.Join(s.dir, fileName))
	if err != nil {
		return "", fmt.Errorf("failed to resolve media path: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return path, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *MediaStore) Remove(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}

// Open reads a stored file.
func (s *MediaStore) Open(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read media file: %w", err)
	}
	return data, nil
}

// Dir returns the directory files are stored in.
func (s *MediaStore) Dir() string {
	return s.dir
}

// Ensure MediaStore implements the interface.
var _ secondary.MediaStore = (*MediaStore)(nil)
