package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"affiliateScope/internal/render"
)

// FileRegion writes the rendered HTML fragment to a file, replacing it
// atomically on every write.
type FileRegion struct {
	path string
	mu   sync.Mutex
}

func NewFileRegion(path string) *FileRegion {
	return &FileRegion{path: path}
}

func (s *FileRegion) Replace(view render.DisplayModel) error {
	fragment, err := render.HTML(view)
	if err != nil {
		return fmt.Errorf("render region: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(fragment+"\n"), 0o644); err != nil {
		return fmt.Errorf("write region tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename region: %w", err)
	}
	return nil
}
