package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/leofalp/ratescan/core/extract"
	"github.com/leofalp/ratescan/internal/utils"
)

const createRecordsTable = `
	CREATE TABLE records (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		protocol TEXT NOT NULL,
		contract_address TEXT,
		extraction_method TEXT,
		fields TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	)`

// SQLiteExporter writes records into the records table of a SQLite file.
// The table is recreated on every export. Every record is kept whole as a
// JSON object in the fields column.
type SQLiteExporter struct {
	Path  string
	RunID string
}

// Export implements [Exporter].
func (e *SQLiteExporter) Export(ctx context.Context, records []extract.Record) (string, error) {
	if err := ensureDir(e.Path); err != nil {
		return "", err
	}

	db, err := sql.Open("sqlite", e.Path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer utils.CloseWithLog(db)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS records"); err != nil {
		return "", fmt.Errorf("dropping records table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createRecordsTable); err != nil {
		return "", fmt.Errorf("creating records table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (run_id, position, protocol, contract_address, extraction_method, fields)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("preparing statement: %w", err)
	}
	defer utils.CloseWithLog(stmt)

	for i, r := range records {
		fields, err := json.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("marshalling record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, e.RunID, i, r.Protocol(),
			nullable(r, extract.FieldContractAddress),
			nullable(r, extract.FieldExtractionMethod),
			string(fields)); err != nil {
			return "", fmt.Errorf("saving record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}
	return e.Path, nil
}

func nullable(r extract.Record, key string) sql.NullString {
	v, ok := r[key]
	return sql.NullString{String: v, Valid: ok}
}
