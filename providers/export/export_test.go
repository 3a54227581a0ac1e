package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leofalp/ratescan/core/extract"
)

const addr = "0x1111111111111111111111111111111111111111"

func sampleRecords() []extract.Record {
	return []extract.Record{
		{"protocol": "mainnet", "asset": "USDC", "supply apy": "4.2%", "contract_address": addr},
		{"protocol": "mainnet", "asset": "WETH", "supply apy": "1.9%"},
		{"protocol": "base-v3", "context": "Supply APY <b>3%</b> & more", "element_tag": "span", "element_class": ""},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{" CSV ", FormatCSV, false},
		{"sqlite", FormatSQLite, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColumns(t *testing.T) {
	got := Columns(sampleRecords())
	want := []string{"protocol", "contract_address", "asset", "supply apy", "context", "element_class", "element_tag"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Columns() = %v, want %v", got, want)
	}

	if got := Columns(nil); len(got) != 0 {
		t.Errorf("Expected no columns for no records, got %v", got)
	}
}

func TestJSONExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	exp, err := New(FormatJSON, Options{Dir: dir, BaseName: "aave_all_protocols"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path, err := exp.Export(context.Background(), sampleRecords())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if path != filepath.Join(dir, "aave_all_protocols.json") {
		t.Errorf("unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "<b>3%</b> & more") {
		t.Errorf("Expected HTML characters unescaped, got %s", data)
	}
	if !strings.Contains(string(data), "\n  {") {
		t.Errorf("Expected indented output, got %s", data)
	}

	var back []map[string]string
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(back) != 3 || back[0]["contract_address"] != addr {
		t.Errorf("unexpected round trip: %v", back)
	}
}

func TestJSONExporter_Overwrites(t *testing.T) {
	dir := t.TempDir()
	exp := &JSONExporter{Path: filepath.Join(dir, "x.json")}

	if _, err := exp.Export(context.Background(), sampleRecords()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if _, err := exp.Export(context.Background(), sampleRecords()[:1]); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	data, _ := os.ReadFile(exp.Path)
	var back []map[string]string
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(back) != 1 {
		t.Errorf("Expected file to be overwritten, got %d records", len(back))
	}
}

func TestCSVExporter(t *testing.T) {
	exp := &CSVExporter{Path: filepath.Join(t.TempDir(), "x.csv")}
	if _, err := exp.Export(context.Background(), sampleRecords()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	f, err := os.Open(exp.Path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected header plus 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "protocol" || rows[0][1] != "contract_address" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[2][1] != "" {
		t.Errorf("Expected empty contract_address for WETH, got %q", rows[2][1])
	}
	if rows[3][0] != "base-v3" {
		t.Errorf("Expected base-v3 in last row, got %q", rows[3][0])
	}
}

func TestSQLiteExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.db")
	exp := &SQLiteExporter{Path: path, RunID: "run-1"}

	if _, err := exp.Export(context.Background(), sampleRecords()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	exp.RunID = "run-2"
	if _, err := exp.Export(context.Background(), sampleRecords()[:2]); err != nil {
		t.Fatalf("second Export() error = %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 2 {
		t.Errorf("Expected table to be recreated with 2 rows, got %d", count)
	}

	var runID, protocol, fields string
	var contract sql.NullString
	err = db.QueryRow("SELECT run_id, protocol, contract_address, fields FROM records WHERE position = 0").
		Scan(&runID, &protocol, &contract, &fields)
	if err != nil {
		t.Fatalf("row query error = %v", err)
	}
	if runID != "run-2" || protocol != "mainnet" || contract.String != addr {
		t.Errorf("unexpected row: %s %s %v", runID, protocol, contract)
	}
	var rec map[string]string
	if err := json.Unmarshal([]byte(fields), &rec); err != nil {
		t.Fatalf("fields not JSON: %v", err)
	}
	if rec["asset"] != "USDC" {
		t.Errorf("Expected asset USDC in fields, got %v", rec)
	}

	var missing sql.NullString
	if err := db.QueryRow("SELECT contract_address FROM records WHERE position = 1").Scan(&missing); err != nil {
		t.Fatalf("row query error = %v", err)
	}
	if missing.Valid {
		t.Errorf("Expected NULL contract_address, got %q", missing.String)
	}
}

type stubExporter struct {
	path  string
	err   error
	calls int
}

func (s *stubExporter) Export(_ context.Context, _ []extract.Record) (string, error) {
	s.calls++
	return s.path, s.err
}

func TestWriter_PrimaryFailureReturned(t *testing.T) {
	primary := &stubExporter{err: errors.New("disk full")}
	secondary := &stubExporter{path: "b"}

	_, err := NewWriter(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), primary, secondary).
		Write(context.Background(), sampleRecords())
	if err == nil {
		t.Fatal("Expected primary error")
	}
	if secondary.calls != 0 {
		t.Error("Expected secondary exporters to be skipped after primary failure")
	}
}

func TestWriter_SecondaryFailureLogged(t *testing.T) {
	var buf bytes.Buffer
	primary := &stubExporter{path: "a.json"}
	failing := &stubExporter{err: errors.New("read-only")}
	ok := &stubExporter{path: "c.db"}

	paths, err := NewWriter(slog.New(slog.NewTextHandler(&buf, nil)), primary, failing, ok).
		Write(context.Background(), sampleRecords())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if strings.Join(paths, ",") != "a.json,c.db" {
		t.Errorf("unexpected paths %v", paths)
	}
	if !strings.Contains(buf.String(), "secondary export failed") {
		t.Errorf("Expected secondary failure to be logged, got %s", buf.String())
	}
}

func TestWriter_EmptyDatasetWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	primary := &stubExporter{path: "a"}

	paths, err := NewWriter(slog.New(slog.NewTextHandler(&buf, nil)), primary).Write(context.Background(), nil)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if paths != nil || primary.calls != 0 {
		t.Errorf("Expected nothing written, got %v", paths)
	}
	if !strings.Contains(buf.String(), "no data extracted") {
		t.Errorf("Expected a log line, got %s", buf.String())
	}
}

func TestNewWriterFor(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriterFor(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		[]Format{FormatJSON, FormatCSV}, Options{Dir: dir, BaseName: "rates"})
	if err != nil {
		t.Fatalf("NewWriterFor() error = %v", err)
	}

	paths, err := w.Write(context.Background(), sampleRecords())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("Expected 2 paths, got %v", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected %s to exist: %v", p, err)
		}
	}

	if _, err := NewWriterFor(nil, []Format{"xml"}, Options{Dir: dir, BaseName: "rates"}); err == nil {
		t.Error("Expected error for unknown format")
	}
	if _, err := New(FormatJSON, Options{Dir: dir}); err == nil {
		t.Error("Expected error for empty base name")
	}
}
