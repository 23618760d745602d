// Package journal provides a SQLite-backed history of sync runs. It is
// observational only: reconciliation state lives in the generated files'
// front matter, so losing the journal never affects what a sync does.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/notedown/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	created     INTEGER NOT NULL DEFAULT 0,
	updated     INTEGER NOT NULL DEFAULT 0,
	deleted     INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_items (
	run_id    INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	notion_id TEXT NOT NULL,
	action    TEXT NOT NULL,
	path      TEXT NOT NULL DEFAULT '',
	error     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_run_items_run ON run_items(run_id);
`

// DB wraps a sql.DB with journal operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite journal and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// RunRow is one recorded sync run.
type RunRow struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Created    int
	Updated    int
	Deleted    int
	Skipped    int
	Failed     int
}

// ItemRow is one recorded per-page outcome.
type ItemRow struct {
	RunID    int64
	NotionID string
	Action   string
	Path     string
	Error    string
}

// Record stores a finished run and its item outcomes in one transaction
// and returns the run id.
func (db *DB) Record(started, finished time.Time, s models.Summary) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("journal: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`
		INSERT INTO runs (started_at, finished_at, created, updated, deleted, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, started, finished, s.Created, s.Updated, s.Deleted, s.Skipped, s.Failed)
	if err != nil {
		return 0, fmt.Errorf("journal: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("journal: run id: %w", err)
	}

	if len(s.Items) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO run_items (run_id, notion_id, action, path, error) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("journal: prepare item insert: %w", err)
		}
		defer stmt.Close()
		for _, item := range s.Items {
			errText := ""
			if item.Err != nil {
				errText = item.Err.Error()
			}
			if _, err := stmt.Exec(runID, item.NotionID, string(item.Action), item.Path, errText); err != nil {
				return 0, fmt.Errorf("journal: insert item: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("journal: commit: %w", err)
	}
	return runID, nil
}

// Recent returns the most recent runs, newest first.
func (db *DB) Recent(limit int) ([]RunRow, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := db.conn.Query(`
		SELECT id, started_at, finished_at, created, updated, deleted, skipped, failed
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Created, &r.Updated, &r.Deleted, &r.Skipped, &r.Failed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Items returns the recorded outcomes of one run, in insertion order.
func (db *DB) Items(runID int64) ([]ItemRow, error) {
	rows, err := db.conn.Query(`
		SELECT run_id, notion_id, action, path, error
		FROM run_items WHERE run_id = ? ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("journal: run items: %w", err)
	}
	defer rows.Close()

	var out []ItemRow
	for rows.Next() {
		var it ItemRow
		if err := rows.Scan(&it.RunID, &it.NotionID, &it.Action, &it.Path, &it.Error); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
