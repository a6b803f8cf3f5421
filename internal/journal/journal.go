// Package journal keeps a SQLite record of the fixup commits each run
// created, so an operator can find and undo them later.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry mirrors a row from the fixups table.
type Entry struct {
	ID          int64    `json:"id"`
	RunID       int64    `json:"run_id"`
	Ts          string   `json:"ts"`
	Target      string   `json:"target"`
	Root        string   `json:"root"`
	Revision    string   `json:"revision"`
	ShortID     string   `json:"short_id"`
	Summary     string   `json:"summary"`
	Files       []string `json:"files"`
	Hunks       int      `json:"hunks"`
	FixupCommit string   `json:"fixup_commit"`
}

// Journal is an open journal database.
type Journal struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts TEXT NOT NULL,
		target TEXT NOT NULL,
		root TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fixups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		ts TEXT NOT NULL,
		revision TEXT NOT NULL,
		short_id TEXT,
		summary TEXT,
		files TEXT,
		hunks INTEGER,
		fixup_commit TEXT
	)`,
	"CREATE INDEX IF NOT EXISTS idx_fixups_run ON fixups(run_id)",
	"CREATE INDEX IF NOT EXISTS idx_fixups_revision ON fixups(revision)",
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Journal{db: db}, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// BeginRun records the start of a run and returns its id.
func (j *Journal) BeginRun(target, root string) (int64, error) {
	res, err := j.db.Exec(`INSERT INTO runs (ts, target, root) VALUES (?, ?, ?)`, now(), target, root)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// Record stores one fixup commit created by run runID.
func (j *Journal) Record(runID int64, e Entry) error {
	_, err := j.db.Exec(`
		INSERT INTO fixups
		(run_id, ts, revision, short_id, summary, files, hunks, fixup_commit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, now(), e.Revision, e.ShortID, e.Summary, strings.Join(e.Files, "\n"), e.Hunks, e.FixupCommit)
	if err != nil {
		return fmt.Errorf("insert fixup: %w", err)
	}
	return nil
}

// Recent returns up to limit fixups, newest first.
func (j *Journal) Recent(limit int) ([]*Entry, error) {
	rows, err := j.db.Query(`
		SELECT f.id, f.run_id, f.ts, r.target, r.root, f.revision, f.short_id,
		       f.summary, f.files, f.hunks, f.fixup_commit
		FROM fixups f JOIN runs r ON r.id = f.run_id
		ORDER BY f.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	e := &Entry{}
	var shortID, summary, files, commit sql.NullString
	var hunks sql.NullInt64
	err := rows.Scan(
		&e.ID, &e.RunID, &e.Ts, &e.Target, &e.Root, &e.Revision, &shortID,
		&summary, &files, &hunks, &commit,
	)
	if err != nil {
		return nil, err
	}
	e.ShortID = shortID.String
	e.Summary = summary.String
	if files.String != "" {
		e.Files = strings.Split(files.String, "\n")
	}
	e.Hunks = int(hunks.Int64)
	e.FixupCommit = commit.String
	return e, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
