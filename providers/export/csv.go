package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/leofalp/ratescan/core/extract"
	"github.com/leofalp/ratescan/internal/utils"
)

// CSVExporter writes records as a table over [Columns]. Missing keys are
// written as empty cells.
type CSVExporter struct {
	Path string
}

// Export implements [Exporter].
func (e *CSVExporter) Export(ctx context.Context, records []extract.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := ensureDir(e.Path); err != nil {
		return "", err
	}

	f, err := os.Create(e.Path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", e.Path, err)
	}
	defer utils.CloseWithLog(f)

	cols := Columns(records)
	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}
	row := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			row[i] = r[c]
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing %s: %w", e.Path, err)
	}
	return e.Path, nil
}
