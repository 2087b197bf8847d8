package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/loykin/sidekick/internal/store"
)

// DB implements store.Store for SQLite (modernc.org/sqlite driver, CGO-free).
// DSN is a filesystem path to the SQLite database file. Use ":memory:" for
// in-memory.

type DB struct {
	db *sql.DB
}

// New opens a SQLite database at path.
func New(path string) (*DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	d, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// busy timeout helps with short concurrent locks
	_, _ = d.Exec("PRAGMA busy_timeout=3000;")
	return &DB{db: d}, nil
}

func (s *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backend_transition(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			status TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			trigger_kind TEXT NOT NULL DEFAULT '',
			epoch INTEGER NOT NULL,
			occurred_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_backend_transition_at ON backend_transition(occurred_at);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *DB) RecordTransition(ctx context.Context, tr store.Transition) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO backend_transition(status, reason, trigger_kind, epoch, occurred_at) VALUES(?,?,?,?,?)`,
		tr.Status, tr.Reason, tr.Trigger, int64(tr.Epoch), tr.At.UTC())
	return err
}

func (s *DB) RecentTransitions(ctx context.Context, limit int) ([]store.Transition, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, reason, trigger_kind, epoch, occurred_at FROM backend_transition ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []store.Transition
	for rows.Next() {
		var tr store.Transition
		var epoch int64
		if err := rows.Scan(&tr.Status, &tr.Reason, &tr.Trigger, &epoch, &tr.At); err != nil {
			return nil, err
		}
		tr.Epoch = uint64(epoch)
		out = append(out, tr)
	}
	return out, rows.Err()
}

func (s *DB) Close() error { return s.db.Close() }
