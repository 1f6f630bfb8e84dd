// Package warehouse provides durable storage for uploaded documents.
// One file per document under a fixed root, named by original filename.
package warehouse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Warehouse stores original uploaded files on disk.
type Warehouse struct {
	root string
}

// New creates the warehouse root if needed and returns a Warehouse.
func New(root string) (*Warehouse, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create warehouse dir: %w", err)
	}
	return &Warehouse{root: root}, nil
}

// Root returns the warehouse directory.
func (w *Warehouse) Root() string {
	return w.root
}

// Exists reports whether a document with the given name is already stored.
func (w *Warehouse) Exists(name string) bool {
	path, err := w.pathFor(name)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(path)
	return statErr == nil
}

// Save writes content under the document's original name. The write is atomic:
// content goes to a temp file first and is renamed into place, so readers never
// observe a partial file. Returns an error if the name escapes the root.
func (w *Warehouse) Save(name string, content []byte) error {
	path, err := w.pathFor(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(w.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store document: %w", err)
	}
	return nil
}

// Count returns the number of stored documents (temp files excluded).
func (w *Warehouse) Count() (int, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return 0, fmt.Errorf("read warehouse dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		n++
	}
	return n, nil
}

// pathFor resolves name inside the root, rejecting path traversal.
func (w *Warehouse) pathFor(name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid document name: %q", name)
	}
	return filepath.Join(w.root, base), nil
}
