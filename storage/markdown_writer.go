package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath maps the user-supplied output argument and the business ID to
// a concrete absolute file path:
//   - empty argument: reviews_<id>.md in the current working directory;
//   - an existing directory: that directory joined with reviews_<id>.md;
//   - anything else: the path itself, home-expanded and absolutized.
//
// The resolved path's parent directory is created if missing, so an
// unwritable destination fails here, before any expensive work begins.
func ResolvePath(pathArg string, id int64) (string, error) {
	name := fmt.Sprintf("reviews_%d.md", id)

	abs := ""
	if pathArg == "" {
		var err error
		abs, err = filepath.Abs(name)
		if err != nil {
			return "", fmt.Errorf("storage: resolve default path: %w", err)
		}
	} else {
		path, err := expandHome(pathArg)
		if err != nil {
			return "", err
		}

		abs, err = filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("storage: resolve path %q: %w", pathArg, err)
		}

		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			abs = filepath.Join(abs, name)
		}
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return "", fmt.Errorf("storage: create output dir: %w", err)
	}

	return abs, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: expand home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
}

// MarkdownWriter writes rendered documents to the filesystem, creating
// parent directories as needed and silently overwriting existing files.
type MarkdownWriter struct{}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

// Write stores the document as UTF-8 text at path.
func (w *MarkdownWriter) Write(path, doc string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("storage: create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return fmt.Errorf("storage: write %q: %w", path, err)
	}
	return nil
}
