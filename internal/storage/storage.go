// Package storage persists downloaded resources under a root directory,
// one subdirectory per story.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Directory and file permissions for created paths.
const (
	permDir  = 0o755
	permFile = 0o644
)

// FileStore writes downloaded resources under a fixed root directory.
// Directory creation and file writes are idempotent: re-creating an
// existing directory succeeds and re-writing a file overwrites it.
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at root, creating it if absent.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("file store: root directory must be specified")
	}

	if err := os.MkdirAll(root, permDir); err != nil {
		return nil, fmt.Errorf("file store create root %s: %w", root, err)
	}

	return &FileStore{root: root}, nil
}

// Root returns the store's root directory.
func (s *FileStore) Root() string {
	return s.root
}

// StoryDir returns the directory path for a story without creating it.
// The path is deterministic: <root>/<story id>.
func (s *FileStore) StoryDir(id int64) string {
	return filepath.Join(s.root, strconv.FormatInt(id, 10))
}

// EnsureStoryDir creates the story's directory if absent and returns its path.
func (s *FileStore) EnsureStoryDir(id int64) (string, error) {
	dir := s.StoryDir(id)

	if err := os.MkdirAll(dir, permDir); err != nil {
		return "", fmt.Errorf("file store create dir %s: %w", dir, err)
	}

	return dir, nil
}

// WriteFile writes body to dir/name, overwriting any existing file.
// Returns the full path written.
func (s *FileStore) WriteFile(dir, name string, body []byte) (string, error) {
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, body, permFile); err != nil {
		return "", fmt.Errorf("file store write %s: %w", path, err)
	}

	return path, nil
}
