package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ystepanoff/nfcgate/access"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS access_events (
	id        TEXT PRIMARY KEY,
	at        INTEGER NOT NULL,
	uid       TEXT NOT NULL,
	uid_len   INTEGER NOT NULL,
	granted   INTEGER NOT NULL,
	attempt   INTEGER NOT NULL,
	delay_ms  INTEGER NOT NULL,
	saturated INTEGER NOT NULL,
	cue       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_access_events_at ON access_events(at);
`

// SQLiteSink writes entries to a local SQLite file.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the journal database at path.
func OpenSQLite(path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO access_events (id, at, uid, uid_len, granted, attempt, delay_ms, saturated, cue)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UnixNano(), e.UID, e.Length, boolToInt(e.Granted), e.Attempt,
		e.Delay.Milliseconds(), boolToInt(e.Saturated), int(e.Cue),
	)
	if err != nil {
		return fmt.Errorf("journal insert: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteSink) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, uid, uid_len, granted, attempt, delay_ms, saturated, cue
		 FROM access_events ORDER BY at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			at        int64
			granted   int
			delayMS   int64
			saturated int
			cue       int
		)
		if err := rows.Scan(&e.ID, &at, &e.UID, &e.Length, &granted, &e.Attempt, &delayMS, &saturated, &cue); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		e.Time = time.Unix(0, at)
		e.Granted = granted != 0
		e.Delay = time.Duration(delayMS) * time.Millisecond
		e.Saturated = saturated != 0
		e.Cue = access.Cue(cue)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountDenied returns how many denials were recorded since t.
func (s *SQLiteSink) CountDenied(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM access_events WHERE granted = 0 AND at >= ?`, since.UnixNano()).Scan(&n)
	return n, err
}

func (s *SQLiteSink) Close() error { return s.db.Close() }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
