package session

import (
	"context"
)

// Store defines the interface for session persistence.
type Store interface {
	// Create creates a new session. An empty projectID means standalone.
	Create(ctx context.Context, id, projectID, title string) (*Session, error)

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*Session, error)

	// List returns all sessions ordered by updated_at descending.
	List(ctx context.Context) ([]*Session, error)

	// ListByProject returns a project's sessions ordered by updated_at
	// descending. An empty projectID lists standalone sessions.
	ListByProject(ctx context.Context, projectID string) ([]*Session, error)

	// UpdateTitle updates the title of a session.
	UpdateTitle(ctx context.Context, id, title string) error

	// Touch bumps a session's updated_at timestamp.
	Touch(ctx context.Context, id string) error

	// Delete removes a session by ID; its messages go with it.
	Delete(ctx context.Context, id string) error
}
