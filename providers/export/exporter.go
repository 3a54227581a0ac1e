package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leofalp/ratescan/core/extract"
)

// Exporter writes records somewhere and returns the location written.
type Exporter interface {
	Export(ctx context.Context, records []extract.Record) (string, error)
}

// Format names an export format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatSQLite}

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unknown export format %q (want one of json, csv, sqlite)", s)
	}
	return f, nil
}

// Options locate the exported files.
type Options struct {
	// Dir is the output directory, created if missing.
	Dir string
	// BaseName is the file name without extension.
	BaseName string
	// RunID tags SQLite rows.
	RunID string
}

func (o Options) path(ext string) string {
	return filepath.Join(o.Dir, o.BaseName+ext)
}

// New returns the exporter for format f.
func New(f Format, opts Options) (Exporter, error) {
	if opts.BaseName == "" {
		return nil, fmt.Errorf("export base name cannot be empty")
	}
	switch f {
	case FormatJSON:
		return &JSONExporter{Path: opts.path(".json")}, nil
	case FormatCSV:
		return &CSVExporter{Path: opts.path(".csv")}, nil
	case FormatSQLite:
		return &SQLiteExporter{Path: opts.path(".db"), RunID: opts.RunID}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}

// leadingColumns come first in tabular output, in this order.
var leadingColumns = []string{
	extract.FieldProtocol,
	extract.FieldContractAddress,
	extract.FieldExtractionMethod,
}

// Columns returns the union of record keys. The leading fields come first;
// other keys follow in order of the first record carrying them, sorted within
// that record.
func Columns(records []extract.Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, c := range leadingColumns {
		for _, r := range records {
			if _, ok := r[c]; ok {
				seen[c] = true
				cols = append(cols, c)
				break
			}
		}
	}
	for _, r := range records {
		keys := make([]string, 0, len(r))
		for k := range r {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		for _, k := range keys {
			seen[k] = true
			cols = append(cols, k)
		}
	}
	return cols
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return nil
}
