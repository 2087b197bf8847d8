package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/loykin/sidekick/internal/store"
)

type DB struct {
	db *sql.DB
}

func New(dsn string) (*DB, error) {
	d, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &DB{db: d}, nil
}

func (p *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backend_transition(
			id BIGSERIAL PRIMARY KEY,
			status TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			trigger_kind TEXT NOT NULL DEFAULT '',
			epoch BIGINT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_backend_transition_at ON backend_transition(occurred_at);`,
	}
	for _, q := range stmts {
		if _, err := p.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (p *DB) RecordTransition(ctx context.Context, tr store.Transition) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO backend_transition(status, reason, trigger_kind, epoch, occurred_at) VALUES($1,$2,$3,$4,$5)`,
		tr.Status, tr.Reason, tr.Trigger, int64(tr.Epoch), tr.At.UTC())
	return err
}

func (p *DB) RecentTransitions(ctx context.Context, limit int) ([]store.Transition, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT status, reason, trigger_kind, epoch, occurred_at FROM backend_transition ORDER BY id DESC LIMIT $1`, limit)
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

func (p *DB) Close() error { return p.db.Close() }
