package message

import (
	"context"
)

// Store defines the interface for message persistence.
type Store interface {
	// Create appends a new message and fills in its ID and CreatedAt.
	Create(ctx context.Context, msg *Message) error

	// Get retrieves a message by ID.
	Get(ctx context.Context, id int64) (*Message, error)

	// GetBySession returns all messages for a session in ascending ID order.
	GetBySession(ctx context.Context, sessionID string) ([]*Message, error)

	// Count returns the number of messages in a session.
	Count(ctx context.Context, sessionID string) (int64, error)

	// DeleteBySession removes all messages for a session.
	DeleteBySession(ctx context.Context, sessionID string) error
}
