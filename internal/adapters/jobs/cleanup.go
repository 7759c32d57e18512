package jobs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/melih/mapserver/internal/platform/logger"
)

// ClearJunkFiles deletes files matching junk patterns anywhere below the pool's work directories.
type ClearJunkFiles struct {
	root     string
	patterns []string
	log      logger.Logger
}

// NewClearJunkFiles creates the job. Patterns match file names, e.g. "*.dmp".
func NewClearJunkFiles(root string, patterns []string, log logger.Logger) *ClearJunkFiles {
	return &ClearJunkFiles{root: root, patterns: patterns, log: log}
}

// Run returns the number of deleted files. Files that cannot be deleted are skipped.
func (j *ClearJunkFiles) Run(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(j.root)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(j.root, entry.Name())
		for _, pattern := range j.patterns {
			if err := ctx.Err(); err != nil {
				return deleted, err
			}
			matches, err := doublestar.Glob(os.DirFS(dir), "**/"+pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
			if err != nil {
				j.log.Warn("Failed to search junk files", logger.WithField("dir", dir), logger.WithError(err))
				continue
			}
			for _, match := range matches {
				if os.Remove(filepath.Join(dir, filepath.FromSlash(match))) == nil {
					deleted++
				}
			}
		}
	}

	j.log.Info("Cleared junk files", logger.WithField("deleted", deleted))
	return deleted, nil
}
