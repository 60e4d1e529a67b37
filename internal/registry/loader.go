package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"inferd/internal/common/fsutil"
	"inferd/pkg/types"
)

// LoadDir scans a directory for *.gguf files and builds a registry from
// filenames. ID is the full filename (including extension); Path is the
// absolute file path. Results are sorted by ID.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		p := filepath.Join(abs, name)
		models = append(models, types.Model{
			ID:        name,
			Name:      name,
			Path:      p,
			SizeBytes: fsutil.FileSize(p),
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// Resolve maps a model reference to a weights path. Absolute paths and paths
// containing a separator pass through with ~ expansion; bare filenames are
// joined to dir when one is configured.
func Resolve(dir, ref string) (string, error) {
	expanded, err := fsutil.ExpandHome(ref)
	if err != nil {
		return "", err
	}
	if dir == "" || filepath.IsAbs(expanded) || strings.ContainsRune(expanded, filepath.Separator) {
		return expanded, nil
	}
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, expanded), nil
}
