package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	name TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sequences (
	name TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
`

// SQLiteStore keeps the collection as a single JSON document row. It has
// the same whole-collection contract as FileStore.
type SQLiteStore[T any] struct {
	db   *sql.DB
	name string
}

// OpenSQLite opens (creating if needed) the database at path. name selects
// the document row, so one database can hold several collections.
func OpenSQLite[T any](ctx context.Context, path, name string) (*SQLiteStore[T], error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps :memory: databases alive and writes serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore[T]{db: db, name: name}, nil
}

func (s *SQLiteStore[T]) Load(ctx context.Context) ([]T, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, s.name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("load %s: %w", s.name, err)
	}
	return decodeDocument[T]([]byte(body), "sqlite:"+s.name)
}

func (s *SQLiteStore[T]) Save(ctx context.Context, items []T) error {
	b, err := encodeDocument(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.name, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		s.name, string(b), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save %s: %w", s.name, err)
	}
	return nil
}

// Sequence returns the id sequence stored alongside the document.
func (s *SQLiteStore[T]) Sequence() Sequence {
	return &sqliteSequence{db: s.db, name: s.name}
}

func (s *SQLiteStore[T]) Close() error {
	return s.db.Close()
}

type sqliteSequence struct {
	db   *sql.DB
	name string
}

func (q *sqliteSequence) Next(ctx context.Context, floor int) (int, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin sequence: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var last int
	err = tx.QueryRowContext(ctx, `SELECT value FROM sequences WHERE name = ?`, q.name).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read sequence %s: %w", q.name, err)
	}
	next := max(last, floor) + 1
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sequences (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`, q.name, next)
	if err != nil {
		return 0, fmt.Errorf("write sequence %s: %w", q.name, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sequence %s: %w", q.name, err)
	}
	return next, nil
}
