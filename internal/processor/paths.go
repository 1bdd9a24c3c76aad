package processor

import (
	"fmt"
	"path/filepath"

	"mpic/internal/config"
)

const tempSuffix = ".tmp"

// MapPath returns where the re-encoded bytes for task are written first. In
// mirror mode that is the file's place under the output root, relative to
// the walk root; in replace mode it is a sibling temp file.
func MapPath(task Task, cfg config.Config) (string, error) {
	if cfg.Replace {
		return task.Path + tempSuffix, nil
	}
	if cfg.OutputRoot == "" {
		return "", fmt.Errorf("output directory required when not replacing in place")
	}

	rel, err := filepath.Rel(task.BaseDir, task.Path)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", task.Path, err)
	}
	return filepath.Join(cfg.OutputRoot, rel), nil
}
