package logging

import (
	"io"
	"log/slog"
)

// Option configures [New].
type Option func(*config)

type config struct {
	format Format
	level  slog.Leveler
	output io.Writer
	colors bool
}

// WithFormat sets the output format.
func WithFormat(f Format) Option {
	return func(c *config) { c.format = f }
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Leveler) Option {
	return func(c *config) { c.level = level }
}

// WithOutput sets the destination writer.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithColors forces ANSI colors on or leaves them to terminal detection.
func WithColors(enabled bool) Option {
	return func(c *config) { c.colors = enabled }
}

// New returns a logger backed by [Handler]. Format and level default to the
// environment (see [FormatFromEnv] and [LevelFromEnv]).
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		format: FormatFromEnv(),
		level:  LevelFromEnv(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return slog.New(NewHandler(&HandlerOptions{
		Format: cfg.format,
		Level:  cfg.level,
		Output: cfg.output,
		Colors: cfg.colors,
	}))
}
