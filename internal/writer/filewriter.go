// Package writer provides sinks for exported session documents.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives an encoded document.
type Sink interface {
	WriteState(data []byte) error
}

// FileWriter replaces the file at Path atomically, so a reader never sees a
// half-written export.
type FileWriter struct {
	Path string
	Perm os.FileMode // Default 0644
}

// WriteState writes data to a temp file next to Path, syncs it and renames
// it over Path. The parent directory is created if missing.
func (w *FileWriter) WriteState(data []byte) error {
	dir := filepath.Dir(w.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".partsim-export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, w.Path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	committed = true
	return nil
}
