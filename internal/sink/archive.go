// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// Archive persists records to a SQLite database so harvest runs accumulate
// into a queryable local store. Each run gets a row in runs; records are
// keyed by (run, source, id) and written with INSERT OR IGNORE, matching
// the pipeline's uniqueness invariant.
type Archive struct {
	db    *sql.DB
	runID int64
}

// OpenArchive opens or creates the archive database at path and ensures
// the schema exists.
func OpenArchive(path string) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	a := &Archive{db: db}
	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return a, nil
}

func (a *Archive) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			query TEXT NOT NULL,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			source TEXT NOT NULL,
			id TEXT NOT NULL,
			doi TEXT,
			title TEXT,
			publication TEXT,
			cover_date TEXT,
			creator TEXT,
			news_mentions TEXT,
			policy_citations TEXT,
			PRIMARY KEY (run_id, source, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi)`,
	}
	for _, stmt := range statements {
		if _, err := a.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun registers a new run; subsequent WriteRecords calls attach to it.
func (a *Archive) BeginRun(source, query string) error {
	res, err := a.db.Exec(
		`INSERT INTO runs (source, query, started_at) VALUES (?, ?, ?)`,
		source, query, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("registering run: %w", err)
	}
	a.runID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading run ID: %w", err)
	}
	return nil
}

// WriteRecords inserts the batch inside one transaction.
func (a *Archive) WriteRecords(records []types.Record) error {
	if a.runID == 0 {
		return fmt.Errorf("archive: BeginRun must be called before WriteRecords")
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO records
		(run_id, source, id, doi, title, publication, cover_date, creator, news_mentions, policy_citations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(
			a.runID, r.Source, r.ID, r.DOI, r.Title, r.Publication,
			r.CoverDate, r.Creator, r.NewsMentions, r.PolicyCitations,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting record %s: %w", r.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// RecordCount returns the number of records stored for the current run.
func (a *Archive) RecordCount() (int, error) {
	var n int
	err := a.db.QueryRow(`SELECT count(*) FROM records WHERE run_id = ?`, a.runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// Close releases the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}
