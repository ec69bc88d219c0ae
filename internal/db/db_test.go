package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	t.Run("creates database file", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		database, err := Open(dbPath)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer func() { _ = database.Close() }() //nolint:errcheck // Intentionally ignoring close error in test cleanup

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "nested", "dir", "test.db")

		database, err := Open(dbPath)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer func() { _ = database.Close() }() //nolint:errcheck // Intentionally ignoring close error in test cleanup

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created in nested directory")
		}
	})

	t.Run("runs migrations", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		database, err := Open(dbPath)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer func() { _ = database.Close() }() //nolint:errcheck // Intentionally ignoring close error in test cleanup

		for _, table := range []string{"projects", "sessions", "messages"} {
			var tableName string
			err = database.QueryRowContext(context.Background(),
				"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableName)
			if err != nil {
				t.Fatalf("%s table not created: %v", table, err)
			}
		}
	})

	t.Run("enables WAL mode", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		database, err := Open(dbPath)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer func() { _ = database.Close() }() //nolint:errcheck // Intentionally ignoring close error in test cleanup

		var journalMode string
		err = database.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&journalMode)
		if err != nil {
			t.Fatalf("failed to get journal_mode: %v", err)
		}

		if journalMode != "wal" {
			t.Errorf("journal_mode = %q, want %q", journalMode, "wal")
		}
	})

	t.Run("enables foreign keys", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		database, err := Open(dbPath)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer func() { _ = database.Close() }() //nolint:errcheck // Intentionally ignoring close error in test cleanup

		var foreignKeys int
		err = database.QueryRowContext(context.Background(), "PRAGMA foreign_keys").Scan(&foreignKeys)
		if err != nil {
			t.Fatalf("failed to get foreign_keys: %v", err)
		}

		if foreignKeys != 1 {
			t.Errorf("foreign_keys = %d, want 1", foreignKeys)
		}
	})
}

func TestWithTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		database := openTestDB(t)

		err := database.WithTx(context.Background(), func(tx *sql.Tx) error {
			_, err := tx.Exec(
				"INSERT INTO projects (id, name, instructions, created_at, updated_at) VALUES (?, ?, ?, 0, 0)",
				"p1", "Test", "")
			return err
		})
		if err != nil {
			t.Fatalf("WithTx() error = %v", err)
		}

		var count int
		if err := database.QueryRowContext(context.Background(),
			"SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
			t.Fatalf("count query error = %v", err)
		}
		if count != 1 {
			t.Errorf("count = %d, want 1", count)
		}
	})

	t.Run("rolls back on error", func(t *testing.T) {
		database := openTestDB(t)

		wantErr := errors.New("boom")
		err := database.WithTx(context.Background(), func(tx *sql.Tx) error {
			if _, err := tx.Exec(
				"INSERT INTO projects (id, name, instructions, created_at, updated_at) VALUES (?, ?, ?, 0, 0)",
				"p1", "Test", ""); err != nil {
				return err
			}
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("WithTx() error = %v, want %v", err, wantErr)
		}

		var count int
		if err := database.QueryRowContext(context.Background(),
			"SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
			t.Fatalf("count query error = %v", err)
		}
		if count != 0 {
			t.Errorf("count = %d, want 0", count)
		}
	})
}

func openTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() }) //nolint:errcheck // Intentionally ignoring close error in test cleanup

	return database
}
