package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Outcomes recorded for an enforcement entry.
const (
	OutcomeTerminated = "terminated"
	OutcomeGone       = "gone"
	OutcomeResumed    = "resumed"
	OutcomeFailed     = "failed"
	OutcomeDryRun     = "dry-run"
)

// Entry is one journaled enforcement decision.
type Entry struct {
	ID        int64
	CycleID   string
	SessionID string
	User      string
	Rule      string
	Reason    string
	Action    string
	Outcome   string
	CreatedAt time.Time
}

// Store persists enforcement decisions in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and applies
// migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path reports the database file location.
func (s *Store) Path() string { return s.path }

// Append records one enforcement decision. CreatedAt defaults to now when
// unset.
func (s *Store) Append(ctx context.Context, entry Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO enforcement_log (
            cycle_id, session_id, user, rule, reason, action, outcome, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.CycleID,
		entry.SessionID,
		entry.User,
		entry.Rule,
		entry.Reason,
		entry.Action,
		entry.Outcome,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert enforcement entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, cycle_id, session_id, user, rule, reason, action, outcome, created_at
         FROM enforcement_log ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query enforcement log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enforcement log: %w", err)
	}
	return entries, nil
}

// RecentForUser returns up to limit entries for one user, newest first.
func (s *Store) RecentForUser(ctx context.Context, user string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, cycle_id, session_id, user, rule, reason, action, outcome, created_at
         FROM enforcement_log WHERE user = ? ORDER BY id DESC LIMIT ?`,
		user,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query enforcement log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enforcement log: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than the cutoff and reports how many were
// removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM enforcement_log WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune enforcement log: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var entry Entry
	var createdAt string
	if err := rows.Scan(
		&entry.ID,
		&entry.CycleID,
		&entry.SessionID,
		&entry.User,
		&entry.Rule,
		&entry.Reason,
		&entry.Action,
		&entry.Outcome,
		&createdAt,
	); err != nil {
		return Entry{}, fmt.Errorf("scan enforcement entry: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		entry.CreatedAt = parsed
	}
	return entry, nil
}
