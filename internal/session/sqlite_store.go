package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a session is not found.
var ErrNotFound = errors.New("session not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed session store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create creates a new session with the given ID, project and title.
func (s *SQLiteStore) Create(ctx context.Context, id, projectID, title string) (*Session, error) {
	now := time.Now()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, project_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, nullString(projectID), title, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{
		ID:        id,
		ProjectID: projectID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Get retrieves a session by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, project_id, title, created_at, updated_at FROM sessions WHERE id = ?", id)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}

	return sess, nil
}

// List returns all sessions ordered by updated_at descending.
func (s *SQLiteStore) List(ctx context.Context) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, project_id, title, created_at, updated_at FROM sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// ListByProject returns a project's sessions; empty projectID means the
// standalone ones.
func (s *SQLiteStore) ListByProject(ctx context.Context, projectID string) ([]*Session, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if projectID == "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT id, project_id, title, created_at, updated_at FROM sessions WHERE project_id IS NULL ORDER BY updated_at DESC")
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT id, project_id, title, created_at, updated_at FROM sessions WHERE project_id = ? ORDER BY updated_at DESC",
			projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("listing sessions by project: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// UpdateTitle updates the title of a session.
func (s *SQLiteStore) UpdateTitle(ctx context.Context, id, title string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?",
		title, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("updating session title: %w", err)
	}

	return nil
}

// Touch bumps a session's updated_at timestamp.
func (s *SQLiteStore) Touch(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET updated_at = ? WHERE id = ?",
		time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}

	return nil
}

// Delete removes a session by ID. The messages cascade goes through the
// foreign key.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		sess      Session
		projectID sql.NullString
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&sess.ID, &projectID, &sess.Title, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if projectID.Valid {
		sess.ProjectID = projectID.String
	}
	sess.CreatedAt = time.UnixMilli(createdAt)
	sess.UpdatedAt = time.UnixMilli(updatedAt)

	return &sess, nil
}

func collectSessions(rows *sql.Rows) ([]*Session, error) {
	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	return sessions, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
