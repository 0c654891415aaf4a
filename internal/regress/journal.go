package regress

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (runs, run_cells)
const currentSchemaVersion = 1

// CellStatus is the outcome for one cell in a run.
type CellStatus string

const (
	StatusMatch    CellStatus = "match"
	StatusMismatch CellStatus = "mismatch"
	StatusMissing  CellStatus = "missing"
	StatusUpdated  CellStatus = "updated"
)

// Journal records regression runs in SQLite. WAL mode keeps history
// queries readable while a run is writing.
type Journal struct {
	db *sql.DB
}

// OpenJournal creates or opens the run journal at path. Idempotent:
// pragmas and schema apply on every open.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite supports one writer at a time; a single connection
	// avoids SQLITE_BUSY during a run.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	// No incremental migrations yet; schema.sql is the v1 shape.
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Run is one journaled regression run.
type Run struct {
	ID         string
	StartedAt  time.Time
	Mode       string
	Total      int
	Mismatched int
	Missing    int
}

// BeginRun opens a run record and returns its id.
func (j *Journal) BeginRun(mode string) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := j.db.Exec(
		`INSERT INTO runs (id, started_at, mode) VALUES (?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), mode,
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// RecordCell journals one cell outcome and rolls it up into the run
// counters.
func (j *Journal) RecordCell(runID, cellName, cellKey string, status CellStatus, residualArea float64) error {
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("record cell: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO run_cells (run_id, cell_name, cell_key, status, residual_area)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, cellName, cellKey, string(status), residualArea,
	); err != nil {
		return fmt.Errorf("record cell %s: %w", cellName, err)
	}

	update := `UPDATE runs SET total = total + 1`
	switch status {
	case StatusMismatch:
		update += `, mismatched = mismatched + 1`
	case StatusMissing:
		update += `, missing = missing + 1`
	}
	if _, err := tx.Exec(update+` WHERE id = ?`, runID); err != nil {
		return fmt.Errorf("roll up run %s: %w", runID, err)
	}
	return tx.Commit()
}

// LastRun returns the most recent run, or sql.ErrNoRows wrapped when
// the journal is empty.
func (j *Journal) LastRun() (*Run, error) {
	row := j.db.QueryRow(
		`SELECT id, started_at, mode, total, mismatched, missing
		 FROM runs ORDER BY id DESC LIMIT 1`)
	var r Run
	var started string
	if err := row.Scan(&r.ID, &started, &r.Mode, &r.Total, &r.Mismatched, &r.Missing); err != nil {
		return nil, fmt.Errorf("last run: %w", err)
	}
	t, err := time.Parse(time.RFC3339, started)
	if err != nil {
		return nil, fmt.Errorf("last run: parse started_at: %w", err)
	}
	r.StartedAt = t
	return &r, nil
}

// CellHistory returns the journaled statuses for one cell name, most
// recent first.
func (j *Journal) CellHistory(cellName string, limit int) ([]CellStatus, error) {
	rows, err := j.db.Query(
		`SELECT status FROM run_cells WHERE cell_name = ?
		 ORDER BY run_id DESC LIMIT ?`, cellName, limit)
	if err != nil {
		return nil, fmt.Errorf("cell history: %w", err)
	}
	defer rows.Close()

	var out []CellStatus
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("cell history: %w", err)
		}
		out = append(out, CellStatus(s))
	}
	return out, rows.Err()
}
