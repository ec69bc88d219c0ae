package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/parley-ai/parley/internal/db"
)

// setupTestDB creates a fresh database for session tests.
func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() }) //nolint:errcheck // Intentionally ignoring close error in test cleanup

	return database
}

func seedProject(t *testing.T, database *db.DB, id string) {
	t.Helper()

	_, err := database.ExecContext(context.Background(),
		"INSERT INTO projects (id, name, instructions, created_at, updated_at) VALUES (?, ?, ?, 0, 0)",
		id, "Project "+id, "")
	if err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
}

func TestSQLiteStore_Create(t *testing.T) {
	database := setupTestDB(t)
	store := NewSQLiteStore(database.Conn())
	ctx := context.Background()

	t.Run("creates standalone session", func(t *testing.T) {
		sess, err := store.Create(ctx, "s1", "", DefaultTitle)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if sess.ID != "s1" {
			t.Errorf("ID = %q, want %q", sess.ID, "s1")
		}
		if sess.ProjectID != "" {
			t.Errorf("ProjectID = %q, want empty", sess.ProjectID)
		}
		if sess.Title != DefaultTitle {
			t.Errorf("Title = %q, want %q", sess.Title, DefaultTitle)
		}
		if sess.CreatedAt.IsZero() || sess.UpdatedAt.IsZero() {
			t.Error("timestamps should not be zero")
		}
	})

	t.Run("creates project session", func(t *testing.T) {
		seedProject(t, database, "p1")

		sess, err := store.Create(ctx, "s2", "p1", DefaultTitle)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if sess.ProjectID != "p1" {
			t.Errorf("ProjectID = %q, want %q", sess.ProjectID, "p1")
		}

		got, err := store.Get(ctx, "s2")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.ProjectID != "p1" {
			t.Errorf("round-tripped ProjectID = %q, want %q", got.ProjectID, "p1")
		}
	})

	t.Run("rejects unknown project", func(t *testing.T) {
		if _, err := store.Create(ctx, "s3", "missing", DefaultTitle); err == nil {
			t.Error("expected foreign key error, got nil")
		}
	})

	t.Run("fails on duplicate ID", func(t *testing.T) {
		if _, err := store.Create(ctx, "dup", "", DefaultTitle); err != nil {
			t.Fatalf("first Create() error = %v", err)
		}
		if _, err := store.Create(ctx, "dup", "", DefaultTitle); err == nil {
			t.Error("expected error for duplicate ID, got nil")
		}
	})
}

func TestSQLiteStore_Get(t *testing.T) {
	database := setupTestDB(t)
	store := NewSQLiteStore(database.Conn())
	ctx := context.Background()

	t.Run("returns ErrNotFound for missing session", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStore_UpdateTitle(t *testing.T) {
	database := setupTestDB(t)
	store := NewSQLiteStore(database.Conn())
	ctx := context.Background()

	if _, err := store.Create(ctx, "s1", "", DefaultTitle); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.UpdateTitle(ctx, "s1", "Hello"); err != nil {
		t.Fatalf("UpdateTitle() error = %v", err)
	}

	sess, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sess.Title != "Hello" {
		t.Errorf("Title = %q, want %q", sess.Title, "Hello")
	}
}

func TestSQLiteStore_ListByProject(t *testing.T) {
	database := setupTestDB(t)
	store := NewSQLiteStore(database.Conn())
	ctx := context.Background()

	seedProject(t, database, "p1")
	if _, err := store.Create(ctx, "standalone", "", DefaultTitle); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create(ctx, "grouped", "p1", DefaultTitle); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("empty project id lists standalone sessions", func(t *testing.T) {
		sessions, err := store.ListByProject(ctx, "")
		if err != nil {
			t.Fatalf("ListByProject() error = %v", err)
		}
		if len(sessions) != 1 || sessions[0].ID != "standalone" {
			t.Errorf("unexpected sessions: %+v", sessions)
		}
	})

	t.Run("project id lists its sessions", func(t *testing.T) {
		sessions, err := store.ListByProject(ctx, "p1")
		if err != nil {
			t.Fatalf("ListByProject() error = %v", err)
		}
		if len(sessions) != 1 || sessions[0].ID != "grouped" {
			t.Errorf("unexpected sessions: %+v", sessions)
		}
	})
}

func TestSQLiteStore_Delete(t *testing.T) {
	database := setupTestDB(t)
	store := NewSQLiteStore(database.Conn())
	ctx := context.Background()

	if _, err := store.Create(ctx, "s1", "", DefaultTitle); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Seed a message so the cascade is observable.
	if _, err := database.ExecContext(ctx,
		"INSERT INTO messages (session_id, role, content, created_at) VALUES (?, 'user', 'hi', 0)",
		"s1"); err != nil {
		t.Fatalf("failed to seed message: %v", err)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	var count int
	if err := database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE session_id = 's1'").Scan(&count); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 0 {
		t.Errorf("message count after cascade = %d, want 0", count)
	}
}
