// Package logging configures log/slog for ratescan.
//
// [NewHandler] renders records in one of three formats: compact single-line
// output with JSON attributes (the default), a pretty multi-line layout for
// debugging, or plain JSON for log aggregation. [New] builds a *slog.Logger
// from functional options and falls back to the RATESCAN_LOG_FORMAT /
// RATESCAN_LOG_LEVEL environment variables (or LOG_FORMAT / LOG_LEVEL).
package logging
