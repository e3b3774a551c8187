// Package media owns image files referenced by database rows: storage on
// local disk, data-URI decoding and the cleanup of files whose rows changed.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	DirCategoryIcons  = "uploaded_images/category_icons"
	DirVisualizeTypes = "uploaded_images/visualize_type"
	DirSampleData     = "uploaded_images/sample_data"
	DirSettingData    = "uploaded_images/setting_data"
	DirThumbnails     = "uploaded_images/thumbnails"
	DirProfile        = "uploaded_images/profile"
)

var ErrUnsafePath = errors.New("media path escapes storage root")

// Store is the file backend. Paths are relative to the storage root and
// always use forward slashes.
type Store interface {
	Save(rel string, data []byte) error
	Remove(rel string) error
	Exists(rel string) bool
	URL(rel string) string
}

// LocalStore keeps files under a directory on local disk.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) abs(rel string) (string, error) {
	clean := filepath.FromSlash(rel)
	if rel == "" || !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, rel)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalStore) Save(rel string, data []byte) error {
	absPath, err := s.abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		_ = os.Remove(absPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Remove deletes the file. A file that is already gone is not an error.
func (s *LocalStore) Remove(rel string) error {
	absPath, err := s.abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(absPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", rel, err)
	}
	return nil
}

func (s *LocalStore) Exists(rel string) bool {
	absPath, err := s.abs(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(absPath)
	return err == nil && info.Mode().IsRegular()
}

func (s *LocalStore) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(rel), "/")
}
