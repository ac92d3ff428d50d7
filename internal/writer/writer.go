package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

// FileWriter persists crawl trees as indented JSON at a fixed path
type FileWriter struct {
	path string
	mu   sync.Mutex
}

// New creates a FileWriter for path, creating its directory
func New(path string) (*FileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileWriter{path: path}, nil
}

// Path returns where trees are written
func (w *FileWriter) Path() string {
	return w.path
}

// WriteTree replaces the output file with root. A nil root is written as null.
func (w *FileWriter) WriteTree(root *common.CrawlNode) error {
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("failed to replace output: %w", err)
	}
	return nil
}
