package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is the subset of *pgxpool.Pool the store needs.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Postgres keeps values in a jsonb column of kv_store.
type Postgres struct {
	db    pgxQuerier
	close func()
}

func NewPostgres(db pgxQuerier, closeFn func()) *Postgres {
	if closeFn == nil {
		closeFn = func() {}
	}
	return &Postgres{db: db, close: closeFn}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS kv_store (
    slot       TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
	if err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE slot = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select %q: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.db.Exec(ctx, `
INSERT INTO kv_store (slot, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (slot) DO UPDATE SET
  value = EXCLUDED.value,
  updated_at = EXCLUDED.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.close()
	return nil
}
