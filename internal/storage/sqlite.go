// Package storage persists reconciliation results in a SQLite database.
//
// Each run gets a row in runs; every output table of the run ("unique_in_a",
// "duplicates", ...) is stored in records keyed by (run, output, position),
// so one database file can hold the history of many runs.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matsen/refsplit/internal/reference"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection bound to one run.
type DB struct {
	db  *sql.DB
	run Run
}

// Run describes one reconciliation invocation.
type Run struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	StartedAt time.Time `json:"started_at"`
	Sources   []string  `json:"sources"`
}

// OpenDB opens or creates a SQLite database at the given path and records
// run in it. A run without an ID gets a fresh UUID.
func OpenDB(path string, run Run) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	sourcesJSON, err := json.Marshal(run.Sources)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("encoding sources: %w", err)
	}
	_, err = db.Exec(`INSERT INTO runs (id, operation, started_at, sources_json) VALUES (?, ?, ?, ?)`,
		run.ID, run.Operation, run.StartedAt.Unix(), string(sourcesJSON))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("recording run: %w", err)
	}

	return &DB{db: db, run: run}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Run returns the run this connection writes to.
func (d *DB) Run() Run {
	return d.run
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			operation TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			sources_json TEXT NOT NULL
		);

		-- One row per output record; NULL columns are null cells
		CREATE TABLE IF NOT EXISTS records (
			run_id TEXT NOT NULL REFERENCES runs(id),
			output TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT,
			year TEXT,
			journal TEXT,
			authors TEXT,
			doi TEXT,
			PRIMARY KEY (run_id, output, position)
		);

		-- Index for DOI lookups across runs
		CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi) WHERE doi IS NOT NULL AND doi != '';
	`

	_, err := db.Exec(schema)
	return err
}

// WriteTable stores one output table of the current run, replacing any
// rows previously written under the same name.
func (d *DB) WriteTable(name string, recs []reference.Record) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM records WHERE run_id = ? AND output = ?`, d.run.ID, name); err != nil {
		return fmt.Errorf("clearing %s: %w", name, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (run_id, output, position, title, year, journal, authors, doi)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing records insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range recs {
		_, err := stmt.Exec(d.run.ID, name, i,
			nullable(r.Title), nullable(r.Year), nullable(r.Journal), nullable(r.Authors), nullable(r.DOI))
		if err != nil {
			return fmt.Errorf("inserting %s row %d: %w", name, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", name, err)
	}
	return nil
}

// ReadTable returns the records stored for an output of a run, in order.
func (d *DB) ReadTable(runID, name string) ([]reference.Record, error) {
	rows, err := d.db.Query(`
		SELECT title, year, journal, authors, doi
		FROM records
		WHERE run_id = ? AND output = ?
		ORDER BY position`, runID, name)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", name, err)
	}
	defer rows.Close()

	recs := []reference.Record{}
	for rows.Next() {
		var title, year, journal, authors, doi sql.NullString
		if err := rows.Scan(&title, &year, &journal, &authors, &doi); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", name, err)
		}
		recs = append(recs, reference.Record{
			Title:   fromNullable(title),
			Year:    fromNullable(year),
			Journal: fromNullable(journal),
			Authors: fromNullable(authors),
			DOI:     fromNullable(doi),
		})
	}
	return recs, rows.Err()
}

// Outputs lists the output names stored for a run.
func (d *DB) Outputs(runID string) ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT output FROM records WHERE run_id = ? ORDER BY output`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing outputs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning output name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Runs lists every run recorded in the database, oldest first.
func (d *DB) Runs() ([]Run, error) {
	rows, err := d.db.Query(`SELECT id, operation, started_at, sources_json FROM runs ORDER BY started_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run         Run
			startedAt   int64
			sourcesJSON string
		)
		if err := rows.Scan(&run.ID, &run.Operation, &startedAt, &sourcesJSON); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.StartedAt = time.Unix(startedAt, 0)
		if err := json.Unmarshal([]byte(sourcesJSON), &run.Sources); err != nil {
			return nil, fmt.Errorf("decoding sources for run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// nullable converts a cell to a SQL value, mapping null cells to NULL.
func nullable(v reference.Value) sql.NullString {
	return sql.NullString{String: v.Text, Valid: v.Valid}
}

func fromNullable(s sql.NullString) reference.Value {
	if !s.Valid {
		return reference.Null
	}
	return reference.Str(s.String)
}
