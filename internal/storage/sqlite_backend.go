package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

// SQLiteBackend keeps every document as one row of the documents table.
type SQLiteBackend struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteBackend(db *sql.DB) (*SQLiteBackend, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteBackend{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// OpenSQLite opens the database at path and applies pending migrations.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite serializes writers
	db.SetMaxOpenConns(1)
	if err := MigrateUp(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	backend, err := NewSQLiteBackend(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return backend, nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) Read(ctx context.Context, kind Kind, key string) ([]byte, error) {
	if err := validateKey(kind, key); err != nil {
		return nil, err
	}
	var body []byte
	err := b.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE kind = ? AND key = ?`, string(kind), key).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s document %q: %w", kind, key, err)
	}
	return body, nil
}

func (b *SQLiteBackend) Write(ctx context.Context, kind Kind, key string, data []byte) error {
	if err := validateKey(kind, key); err != nil {
		return err
	}
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO documents (kind, key, body, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		string(kind), key, data, b.now().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("write %s document %q: %w", kind, key, err)
	}
	return nil
}

func (b *SQLiteBackend) Keys(ctx context.Context, kind Kind) ([]string, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidKey, kind)
	}
	rows, err := b.db.QueryContext(ctx, `SELECT key FROM documents WHERE kind = ? ORDER BY key`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, rows.Err()
}

// UpdatedAt reports when a document was last written.
func (b *SQLiteBackend) UpdatedAt(ctx context.Context, kind Kind, key string) (time.Time, error) {
	if err := validateKey(kind, key); err != nil {
		return time.Time{}, err
	}
	var raw string
	err := b.db.QueryRowContext(ctx, `SELECT updated_at FROM documents WHERE kind = ? AND key = ?`, string(kind), key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	ts, err := time.Parse(sqliteTimeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse updated_at %q: %w", raw, err)
	}
	return ts, nil
}
