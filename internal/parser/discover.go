package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const usageFileExt = ".jsonl"

// ProjectsDir returns the Claude Code projects directory under home
func ProjectsDir(home string) string {
	return filepath.Join(home, ".claude", "projects")
}

// DefaultProjectsDir resolves the projects directory for the current user
func DefaultProjectsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find home directory: %w", err)
	}
	return ProjectsDir(home), nil
}

// FindUsageFiles finds all JSONL files below root, following symbolic links.
// Entries that cannot be read are skipped.
func FindUsageFiles(root string, logger *slog.Logger) ([]string, error) {
	logger = orDefault(logger)

	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, fmt.Errorf("%w at %s: make sure you have used Claude Code at least once", ErrNotFound, root)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	w := &walker{logger: logger, visited: make(map[string]struct{})}
	w.walk(root)
	return w.files, nil
}

type walker struct {
	logger  *slog.Logger
	visited map[string]struct{}
	files   []string
}

func (w *walker) walk(dir string) {
	// Linked directories may form cycles; key visits on the resolved path.
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		w.logger.Debug("skipping directory", "dir", dir, "error", err)
		return
	}
	if _, seen := w.visited[real]; seen {
		return
	}
	w.visited[real] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// ReadDir still returns whatever it managed to read.
		w.logger.Debug("partial directory read", "dir", dir, "error", err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		mode := entry.Type()
		if mode&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				w.logger.Debug("skipping broken link", "path", path, "error", err)
				continue
			}
			mode = target.Mode().Type()
		}

		switch {
		case mode.IsDir():
			w.walk(path)
		case mode.IsRegular() && isUsageFile(entry.Name()):
			w.files = append(w.files, path)
		}
	}
}

func isUsageFile(name string) bool {
	return filepath.Ext(name) == usageFileExt && name != usageFileExt
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
