// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal keeps an append-only SQLite log of pull and push attempts
// so the history of a README's blob SHAs can be inspected after the fact.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/readme-sync/pkg/types"
)

// DefaultPath is the journal location relative to the working directory.
const DefaultPath = ".readme-sync/history.db"

// defaultLimit bounds List when the caller passes a non-positive limit.
const defaultLimit = 20

// Store is the journal database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the journal at path, creating parent directories.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			username TEXT NOT NULL,
			repository TEXT NOT NULL,
			sha_before TEXT,
			sha_after TEXT,
			path TEXT,
			status_code INTEGER,
			outcome TEXT NOT NULL,
			message TEXT,
			at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_repo ON events(username, repository)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends ev and returns its row ID. A zero At is set to now.
func (s *Store) Record(ctx context.Context, ev types.SyncEvent) (int64, error) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (action, username, repository, sha_before, sha_after, path, status_code, outcome, message, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(ev.Action), ev.Username, ev.Repository, ev.SHABefore, ev.SHAAfter,
		ev.Path, ev.StatusCode, string(ev.Outcome), ev.Message,
		ev.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting %s event: %w", ev.Action, err)
	}
	return res.LastInsertId()
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Username   string
	Repository string

	// Limit caps the result; non-positive means 20.
	Limit int
}

// List returns matching events, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]types.SyncEvent, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, username, repository, sha_before, sha_after, path, status_code, outcome, message, at
		 FROM events
		 WHERE (?1 = '' OR username = ?1) AND (?2 = '' OR repository = ?2)
		 ORDER BY id DESC
		 LIMIT ?3`,
		f.Username, f.Repository, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []types.SyncEvent
	for rows.Next() {
		var (
			ev                                 types.SyncEvent
			action, outcome, at                string
			shaBefore, shaAfter, path, message sql.NullString
			status                             sql.NullInt64
		)
		if err := rows.Scan(&ev.ID, &action, &ev.Username, &ev.Repository,
			&shaBefore, &shaAfter, &path, &status, &outcome, &message, &at); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		ev.Action = types.Action(action)
		ev.Outcome = types.Outcome(outcome)
		ev.SHABefore = shaBefore.String
		ev.SHAAfter = shaAfter.String
		ev.Path = path.String
		ev.Message = message.String
		ev.StatusCode = int(status.Int64)
		if ev.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parsing time of event %d: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ExportYAML writes events to w as a YAML sequence.
func ExportYAML(w io.Writer, events []types.SyncEvent) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(events); err != nil {
		return fmt.Errorf("encoding events: %w", err)
	}
	return enc.Close()
}
