// Package output owns the local templates directory.
// Filenames are derived from the object key's base name; the existence
// of a file is both the resumption signal and the fast-skip key, so no
// separate index is kept on disk.
package output

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Ext is the accepted document extension, matched case-insensitively.
const Ext = ".pdf"

// Writer persists accepted templates to the backing directory.
type Writer struct {
	Dir string
}

// New creates a Writer targeting dir, creating it if needed.
func New(dir string) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("templates directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating templates directory: %w", err)
	}
	return &Writer{Dir: dir}, nil
}

// FilenameForKey derives the stable local filename for an object key.
func FilenameForKey(key string) string {
	return path.Base(key)
}

// PathFor returns the full local path for an object key.
func (w *Writer) PathFor(key string) string {
	return filepath.Join(w.Dir, FilenameForKey(key))
}

// Exists reports whether a backing file for key is already on disk.
// Checked before any remote retrieval.
func (w *Writer) Exists(key string) bool {
	_, err := os.Stat(w.PathFor(key))
	return err == nil
}

// Write persists the byte payload under the derived filename.
func (w *Writer) Write(key string, data []byte) (string, error) {
	p := w.PathFor(key)
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", p, err)
	}
	return p, nil
}

// ListBacking returns the paths of all backing files already present,
// matched by extension. Used by the bootstrap loader on resume.
func (w *Writer) ListBacking() ([]string, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return nil, fmt.Errorf("listing templates directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			paths = append(paths, filepath.Join(w.Dir, e.Name()))
		}
	}
	return paths, nil
}
