package export

import (
	"context"
	"log/slog"

	"github.com/leofalp/ratescan/core/extract"
)

// Writer runs a primary exporter followed by secondary ones.
type Writer struct {
	primary   Exporter
	secondary []Exporter
	logger    *slog.Logger
}

// NewWriter creates a Writer. A nil logger means slog.Default().
func NewWriter(logger *slog.Logger, primary Exporter, secondary ...Exporter) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{primary: primary, secondary: secondary, logger: logger}
}

// Write exports records and returns the paths written. Nothing is written for
// an empty dataset. A primary failure aborts and is returned; secondary
// failures are logged.
func (w *Writer) Write(ctx context.Context, records []extract.Record) ([]string, error) {
	if len(records) == 0 {
		w.logger.WarnContext(ctx, "no data extracted, nothing exported")
		return nil, nil
	}

	path, err := w.primary.Export(ctx, records)
	if err != nil {
		return nil, err
	}
	w.logger.InfoContext(ctx, "records exported", slog.String("path", path), slog.Int("records", len(records)))
	paths := []string{path}

	for _, exp := range w.secondary {
		path, err := exp.Export(ctx, records)
		if err != nil {
			w.logger.WarnContext(ctx, "secondary export failed", slog.String("error", err.Error()))
			continue
		}
		w.logger.InfoContext(ctx, "records exported", slog.String("path", path), slog.Int("records", len(records)))
		paths = append(paths, path)
	}
	return paths, nil
}

// NewWriterFor builds a Writer for the given formats; the first is primary.
func NewWriterFor(logger *slog.Logger, formats []Format, opts Options) (*Writer, error) {
	if len(formats) == 0 {
		formats = []Format{FormatJSON}
	}
	exporters := make([]Exporter, 0, len(formats))
	for _, f := range formats {
		exp, err := New(f, opts)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, exp)
	}
	return NewWriter(logger, exporters[0], exporters[1:]...), nil
}
