package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a project is not found.
var ErrNotFound = errors.New("project not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed project store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create creates a new project.
func (s *SQLiteStore) Create(ctx context.Context, id, name, instructions string) (*Project, error) {
	now := time.Now()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, instructions, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, name, instructions, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	return &Project{
		ID:           id,
		Name:         name,
		Instructions: instructions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Get retrieves a project by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, instructions, created_at, updated_at FROM projects WHERE id = ?", id)

	proj, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}

	return proj, nil
}

// List returns all projects ordered by created_at descending.
func (s *SQLiteStore) List(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, instructions, created_at, updated_at FROM projects ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, proj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}

	return projects, nil
}

// Update rewrites a project's name and instructions.
func (s *SQLiteStore) Update(ctx context.Context, id, name, instructions string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE projects SET name = ?, instructions = ?, updated_at = ? WHERE id = ?",
		name, instructions, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}

	return nil
}

// Delete removes a project by ID. Sessions and messages cascade through the
// foreign keys.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	var (
		proj      Project
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&proj.ID, &proj.Name, &proj.Instructions, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	proj.CreatedAt = time.UnixMilli(createdAt)
	proj.UpdatedAt = time.UnixMilli(updatedAt)

	return &proj, nil
}
