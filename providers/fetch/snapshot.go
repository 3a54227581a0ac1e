package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotWriter stores each fetched page as Markdown under Dir, one file per
// source label, for inspecting what the extractor saw.
type SnapshotWriter struct {
	Dir string
}

// NewSnapshotWriter creates dir if needed.
func NewSnapshotWriter(dir string) (*SnapshotWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &SnapshotWriter{Dir: dir}, nil
}

// Snapshot writes page to <Dir>/<label>.md and returns the path.
func (w *SnapshotWriter) Snapshot(label string, page *Page) (string, error) {
	md, err := page.Markdown()
	if err != nil {
		return "", err
	}

	path := filepath.Join(w.Dir, snapshotName(label)+".md")
	header := fmt.Sprintf("<!-- %s -->\n\n", page.URL)
	if err := os.WriteFile(path, []byte(header+md), 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}

// snapshotName keeps labels usable as file names.
func snapshotName(label string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, label)
	if name == "" || strings.Trim(name, ".") == "" {
		return "page"
	}
	return name
}
