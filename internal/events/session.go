package events

import "time"

// SessionEventType represents session-specific event types.
type SessionEventType string

// Session event type constants.
const (
	SessionEventCreated SessionEventType = "created"
	SessionEventRenamed SessionEventType = "renamed"
	SessionEventDeleted SessionEventType = "deleted"
)

// SessionEvent represents a session lifecycle event.
type SessionEvent struct {
	SessionID string
	ProjectID string
	Title     string
	Type      SessionEventType
	Timestamp time.Time
}

// NewSessionCreatedEvent creates a session created event.
func NewSessionCreatedEvent(id, projectID, title string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		ProjectID: projectID,
		Title:     title,
		Type:      SessionEventCreated,
		Timestamp: time.Now(),
	}
}

// NewSessionRenamedEvent creates a session renamed event.
func NewSessionRenamedEvent(id, title string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Title:     title,
		Type:      SessionEventRenamed,
		Timestamp: time.Now(),
	}
}

// NewSessionDeletedEvent creates a session deleted event.
func NewSessionDeletedEvent(id string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Type:      SessionEventDeleted,
		Timestamp: time.Now(),
	}
}
