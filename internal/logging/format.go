package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Format selects how records are rendered.
type Format string

const (
	// FormatCompact prints one line per record:
	// 2026-10-16 10:40:35  INFO source fetched → {"protocol":"mainnet"}
	FormatCompact Format = "compact"

	// FormatPretty prints the message followed by one attribute per line.
	FormatPretty Format = "pretty"

	// FormatJSON prints one JSON object per record.
	FormatJSON Format = "json"
)

// ParseFormat maps a name to a Format. Unknown names yield FormatCompact.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pretty":
		return FormatPretty
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// FormatFromEnv reads RATESCAN_LOG_FORMAT, then LOG_FORMAT.
func FormatFromEnv() Format {
	if v := firstEnv("RATESCAN_LOG_FORMAT", "LOG_FORMAT"); v != "" {
		return ParseFormat(v)
	}
	return FormatCompact
}

// ParseLevel maps DEBUG, INFO, WARN/WARNING and ERROR (any case) to a level.
// Unknown values return INFO and an error describing the input.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// LevelFromEnv reads RATESCAN_LOG_LEVEL, then LOG_LEVEL. An unparsable value
// is reported on stderr and INFO is used.
func LevelFromEnv() slog.Level {
	v := firstEnv("RATESCAN_LOG_LEVEL", "LOG_LEVEL")
	level, err := ParseLevel(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using INFO\n", err)
	}
	return level
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
