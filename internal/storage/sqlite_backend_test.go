package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "gtdbot-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(t.Context(), db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	backend, err := NewSQLiteBackend(db)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	return backend
}

func TestSQLiteReadWriteKeys(t *testing.T) {
	backend := setupSQLite(t)
	ctx := t.Context()
	fixed := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	backend.now = func() time.Time { return fixed }

	if _, err := backend.Read(ctx, KindTasks, "U1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing doc, got %v", err)
	}

	if err := backend.Write(ctx, KindTasks, "U2", []byte("first")); err != nil {
		t.Fatalf("write U2: %v", err)
	}
	if err := backend.Write(ctx, KindTasks, "U1", []byte("first")); err != nil {
		t.Fatalf("write U1: %v", err)
	}
	if err := backend.Write(ctx, KindTasks, "U1", []byte("second")); err != nil {
		t.Fatalf("overwrite U1: %v", err)
	}
	if err := backend.Write(ctx, KindActivity, "U3", []byte("[]")); err != nil {
		t.Fatalf("write activity: %v", err)
	}

	got, err := backend.Read(ctx, KindTasks, "U1")
	if err != nil {
		t.Fatalf("read U1: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected overwrite, got %q", got)
	}

	keys, err := backend.Keys(ctx, KindTasks)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "U1" || keys[1] != "U2" {
		t.Fatalf("unexpected task keys: %v", keys)
	}

	updated, err := backend.UpdatedAt(ctx, KindTasks, "U1")
	if err != nil {
		t.Fatalf("updated at: %v", err)
	}
	if !updated.Equal(fixed) {
		t.Fatalf("unexpected updated_at: %s", updated)
	}
}

func TestSQLiteRejectsInvalidKeys(t *testing.T) {
	backend := setupSQLite(t)
	for _, key := range []string{"", "../etc", "a/b"} {
		if err := backend.Write(t.Context(), KindTasks, key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
	if _, err := backend.Keys(t.Context(), Kind("notes")); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for unknown kind, got %v", err)
	}
}

func TestOpenSQLiteMigrates(t *testing.T) {
	backend, err := OpenSQLite(filepath.Join(t.TempDir(), "open.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer backend.Close()
	if err := backend.Write(t.Context(), KindActivity, "U1", []byte("[]")); err != nil {
		t.Fatalf("write: %v", err)
	}
}
