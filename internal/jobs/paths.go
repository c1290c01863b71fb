package jobs

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var ErrPathOutsideRoot = errors.New("jobs: path outside storage roots")

// within reports whether path lies strictly below root.
func within(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	cleanRoot := filepath.Clean(root)
	cleanPath := filepath.Clean(path)
	return strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator))
}

func (r *Registry) checkPath(path string) error {
	if len(r.roots) == 0 {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	for _, root := range r.roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if within(absRoot, abs) {
			return nil
		}
	}
	slog.Warn("jobs: refusing path outside storage roots", "path", path, "roots", r.roots)
	return ErrPathOutsideRoot
}

func (r *Registry) removePath(path string) error {
	if err := r.checkPath(path); err != nil {
		return err
	}
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}
