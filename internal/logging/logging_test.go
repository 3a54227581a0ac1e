package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestHandler_Compact(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{Format: FormatCompact, Level: slog.LevelDebug, Output: &buf}))

	logger.Info("source fetched", "protocol", "mainnet", "records", 3)

	out := buf.String()
	if !strings.Contains(out, " INFO source fetched") {
		t.Errorf("Expected level and message, got: %s", out)
	}
	if !strings.Contains(out, "→") {
		t.Errorf("Expected → separator, got: %s", out)
	}
	if !strings.Contains(out, `"protocol":"mainnet"`) || !strings.Contains(out, `"records":3`) {
		t.Errorf("Expected JSON attributes, got: %s", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("Expected no colors for a buffer, got: %q", out)
	}
}

func TestHandler_Pretty(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{Format: FormatPretty, Level: slog.LevelDebug, Output: &buf}))

	logger.Warn("source skipped", "protocol", "base-v3", "error", errors.New("status 503"))

	out := buf.String()
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "source skipped") {
		t.Errorf("Expected level and message, got: %s", out)
	}
	if !strings.Contains(out, "├─ protocol: base-v3") {
		t.Errorf("Expected first attribute branch, got: %s", out)
	}
	if !strings.Contains(out, "└─ error: status 503") {
		t.Errorf("Expected last attribute branch, got: %s", out)
	}
}

func TestHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{Format: FormatJSON, Level: slog.LevelDebug, Output: &buf}))

	logger.With("run_id", "abc").WithGroup("fetch").Error("request failed", "status", 500)

	var data map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("Output is not JSON: %v (%s)", err, buf.String())
	}
	if data["level"] != "ERROR" || data["msg"] != "request failed" {
		t.Errorf("Unexpected standard fields: %v", data)
	}
	if data["run_id"] != "abc" {
		t.Errorf("Expected handler attribute run_id, got %v", data["run_id"])
	}
	if data["fetch.status"] != float64(500) {
		t.Errorf("Expected grouped attribute fetch.status=500, got %v", data["fetch.status"])
	}
}

func TestHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{Level: slog.LevelWarn, Output: &buf}))

	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected INFO and DEBUG to be filtered, got: %s", buf.String())
	}

	logger.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("Expected ERROR to be written, got: %s", buf.String())
	}
}

func TestHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{Output: &buf, Colors: true}))

	logger.Info("colored")
	if !strings.Contains(buf.String(), colorGreen) {
		t.Errorf("Expected green INFO, got: %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	testCases := map[string]Format{
		"compact": FormatCompact,
		"PRETTY":  FormatPretty,
		" json ":  FormatJSON,
		"xml":     FormatCompact,
		"":        FormatCompact,
	}
	for in, want := range testCases {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"Warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tc := range testCases {
		got, err := ParseLevel(tc.in)
		if got != tc.want || (err != nil) != tc.wantErr {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, err=%v", tc.in, got, err, tc.want, tc.wantErr)
		}
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("RATESCAN_LOG_FORMAT", "")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("RATESCAN_LOG_LEVEL", "debug")
	t.Setenv("LOG_LEVEL", "error")

	if got := FormatFromEnv(); got != FormatJSON {
		t.Errorf("Expected LOG_FORMAT fallback json, got %s", got)
	}
	if got := LevelFromEnv(); got != slog.LevelDebug {
		t.Errorf("Expected RATESCAN_LOG_LEVEL to win, got %v", got)
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithFormat(FormatJSON), WithLevel(slog.LevelDebug), WithOutput(&buf))

	logger.Debug("hello")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("Expected JSON debug output, got: %s", buf.String())
	}
}
