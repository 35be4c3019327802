package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/songreel/songreel/internal/errcat"
)

// Save writes the session's completed artifact into dir. Repeated calls
// rewrite the same file without touching the network; the first call
// picks a collision-free name.
func Save(s *Session, dir string) (string, error) {
	if s.State() != StateComplete || len(s.Artifact()) == 0 || s.Filename() == "" {
		return "", errcat.New(errcat.CategorySave, "could not save: no completed download")
	}

	path := s.saved()
	if path == "" {
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errcat.Wrap(errcat.CategorySave, fmt.Errorf("creating output directory: %w", err))
		}
		candidate := filepath.Join(dir, s.Filename())
		resolved, err := nextAvailablePath(candidate)
		if err != nil {
			return "", errcat.Wrap(errcat.CategorySave, err)
		}
		path = resolved
		s.markSaved(path)
	}

	if err := os.WriteFile(path, s.Artifact(), 0o644); err != nil {
		return "", errcat.Wrap(errcat.CategorySave, fmt.Errorf("writing artifact: %w", err))
	}
	return path, nil
}

// nextAvailablePath returns path itself when free, else "name (n).ext".
func nextAvailablePath(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", err
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	for i := 1; i < 10000; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", name, i, ext))
		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				return candidate, nil
			}
			return "", err
		}
	}
	return "", fmt.Errorf("unable to find available filename for %s", path)
}
