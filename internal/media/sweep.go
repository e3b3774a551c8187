package media

import (
	"errors"
	"io/fs"
	"path/filepath"
)

// Orphans walks the uploaded_images tree under root and returns the
// relative paths of files no row references.
func Orphans(root string, referenced map[string]struct{}) ([]string, error) {
	base := filepath.Join(root, "uploaded_images")
	var out []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == base && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, ok := referenced[rel]; !ok {
			out = append(out, rel)
		}
		return nil
	})
	return out, err
}
