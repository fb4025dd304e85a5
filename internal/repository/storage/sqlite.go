package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	board TEXT NOT NULL,
	winner TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS movements (
	id TEXT PRIMARY KEY,
	game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	player TEXT NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE (game_id, seq)
);`

type Storage struct {
	Connection *sql.DB
}

// NewSQLiteStorage - every transaction takes the write lock up front (_txlock=immediate),
// so two rounds on the same file are serialized.
func NewSQLiteStorage(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("can't create database directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_foreign_keys=on&_txlock=immediate&_busy_timeout=5000"

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &Storage{Connection: conn}, nil
}

func (that *Storage) Init(ctx context.Context) error {
	_, err := that.Connection.ExecContext(ctx, sqliteSchema)
	if err != nil {
		return fmt.Errorf("can't create tables: %w", err)
	}

	return nil
}

func (that *Storage) Close() error {
	return that.Connection.Close()
}
