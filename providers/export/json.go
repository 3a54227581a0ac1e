package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/leofalp/ratescan/core/extract"
)

// JSONExporter writes records as an indented JSON array.
type JSONExporter struct {
	Path string
}

// Export implements [Exporter].
func (e *JSONExporter) Export(ctx context.Context, records []extract.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if records == nil {
		records = []extract.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return "", fmt.Errorf("encoding records: %w", err)
	}

	if err := ensureDir(e.Path); err != nil {
		return "", err
	}
	if err := os.WriteFile(e.Path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", e.Path, err)
	}
	return e.Path, nil
}
