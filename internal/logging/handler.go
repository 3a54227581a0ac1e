package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/term"
)

// Handler is a slog.Handler supporting the formats in [Format].
type Handler struct {
	format Format
	level  slog.Leveler
	colors bool
	attrs  []slog.Attr
	groups []string

	mu  *sync.Mutex
	out io.Writer
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Format defaults to FormatCompact.
	Format Format
	// Level is the minimum level written.
	Level slog.Leveler
	// Output defaults to os.Stderr.
	Output io.Writer
	// Colors forces ANSI colors. Without it colors are used only when Output
	// is a terminal and the format is not JSON.
	Colors bool
}

// NewHandler creates a Handler. A nil opts uses the defaults.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	h := &Handler{
		format: opts.Format,
		level:  opts.Level,
		colors: opts.Colors,
		mu:     &sync.Mutex{},
		out:    opts.Output,
	}
	if h.format == "" {
		h.format = FormatCompact
	}
	if h.level == nil {
		h.level = slog.LevelInfo
	}
	if h.out == nil {
		h.out = os.Stderr
	}
	if !h.colors && h.format != FormatJSON {
		if f, ok := h.out.(*os.File); ok {
			h.colors = isTerminal(f)
		}
	}
	return h
}

// Enabled reports whether level is at or above the configured minimum.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes one record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	attrs := h.collect(r)

	var buf []byte
	var err error
	switch h.format {
	case FormatJSON:
		buf, err = h.renderJSON(r, attrs)
	case FormatPretty:
		buf = h.renderPretty(r, attrs)
	default:
		buf = h.renderCompact(r, attrs)
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(buf)
	return err
}

// WithAttrs returns a Handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), h.qualify(attrs)...)
	return &clone
}

// WithGroup returns a Handler that prefixes later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *Handler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		key := a.Key
		for j := len(h.groups) - 1; j >= 0; j-- {
			key = h.groups[j] + "." + key
		}
		out[i] = slog.Attr{Key: key, Value: a.Value}
	}
	return out
}

// kv is an ordered attribute used by the renderers.
type kv struct {
	key   string
	value any
}

func (h *Handler) collect(r slog.Record) []kv {
	out := make([]kv, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		out = append(out, kv{a.Key, attrValue(a.Value)})
	}
	var recAttrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		recAttrs = append(recAttrs, a)
		return true
	})
	for _, a := range h.qualify(recAttrs) {
		out = append(out, kv{a.Key, attrValue(a.Value)})
	}
	return out
}

// attrValue unwraps a slog value; errors become their message so they
// survive JSON encoding.
func attrValue(v slog.Value) any {
	x := v.Resolve().Any()
	if err, ok := x.(error); ok {
		return err.Error()
	}
	return x
}

func (h *Handler) renderCompact(r slog.Record, attrs []kv) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')
	buf = h.appendLevel(buf, r.Level, fmt.Sprintf("%5s", levelString(r.Level)))
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	if len(attrs) > 0 {
		m := make(map[string]any, len(attrs))
		for _, a := range attrs {
			m[a.key] = a.value
		}
		data, err := json.Marshal(m)
		if err != nil {
			buf = append(buf, " [json-error]"...)
		} else {
			buf = append(buf, " → "...)
			buf = append(buf, data...)
		}
	}
	return append(buf, '\n')
}

func (h *Handler) renderPretty(r slog.Record, attrs []kv) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')
	level := levelString(r.Level)
	buf = h.appendLevel(buf, r.Level, level)
	for i := len(level); i < 7; i++ {
		buf = append(buf, ' ')
	}
	buf = append(buf, r.Message...)
	buf = append(buf, '\n')

	for i, a := range attrs {
		branch := "├─ "
		if i == len(attrs)-1 {
			branch = "└─ "
		}
		buf = append(buf, "                    "...)
		buf = append(buf, branch...)
		buf = append(buf, a.key...)
		buf = append(buf, ": "...)
		buf = append(buf, fmt.Sprintf("%v", a.value)...)
		buf = append(buf, '\n')
	}
	return buf
}

func (h *Handler) renderJSON(r slog.Record, attrs []kv) ([]byte, error) {
	data := make(map[string]any, len(attrs)+3)
	for _, a := range attrs {
		data[a.key] = a.value
	}
	data["time"] = r.Time.Format("2006-01-02T15:04:05")
	data["level"] = levelString(r.Level)
	data["msg"] = r.Message

	buf, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(buf, '\n'), nil
}

func (h *Handler) appendLevel(buf []byte, level slog.Level, text string) []byte {
	if !h.colors {
		return append(buf, text...)
	}
	buf = append(buf, colorForLevel(level)...)
	buf = append(buf, text...)
	return append(buf, colorReset...)
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
)

func colorForLevel(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
