package localstorage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"yttranscript/internal/core/domain"
)

// LocalStorage implements ports.Storage for the local filesystem.
type LocalStorage struct{}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

// SaveDocument creates dir if needed and writes content to dir/filename,
// replacing any existing file. It returns the absolute path written.
func (s *LocalStorage) SaveDocument(ctx context.Context, dir, filename string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &domain.FilesystemError{Path: dir, Err: fmt.Errorf("failed to create output directory: %w", err)}
	}

	path := filepath.Join(dir, filename)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", &domain.FilesystemError{Path: path, Err: err}
	}
	return path, nil
}
