package project

import (
	"context"
)

// Store defines the interface for project persistence.
type Store interface {
	// Create creates a new project.
	Create(ctx context.Context, id, name, instructions string) (*Project, error)

	// Get retrieves a project by ID.
	Get(ctx context.Context, id string) (*Project, error)

	// List returns all projects ordered by created_at descending.
	List(ctx context.Context) ([]*Project, error)

	// Update rewrites a project's name and instructions.
	Update(ctx context.Context, id, name, instructions string) error

	// Delete removes a project by ID; its sessions and their messages
	// cascade with it.
	Delete(ctx context.Context, id string) error
}
