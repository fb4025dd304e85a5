package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	board JSONB NOT NULL,
	winner TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS movements (
	id TEXT PRIMARY KEY,
	game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	player TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (game_id, seq)
);`

type PostgresStorage struct {
	Pool *pgxpool.Pool
}

func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &PostgresStorage{Pool: pool}, nil
}

func (that *PostgresStorage) Init(ctx context.Context) error {
	if _, err := that.Pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("can't create tables: %w", err)
	}

	return nil
}

func (that *PostgresStorage) Close() {
	that.Pool.Close()
}
