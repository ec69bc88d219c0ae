package events

import "time"

// ProjectEventType represents project-specific event types.
type ProjectEventType string

// Project event type constants.
const (
	ProjectEventCreated ProjectEventType = "created"
	ProjectEventUpdated ProjectEventType = "updated"
	ProjectEventDeleted ProjectEventType = "deleted"
)

// ProjectEvent represents a project lifecycle event.
type ProjectEvent struct {
	ProjectID string
	Name      string
	Type      ProjectEventType
	Timestamp time.Time
}

// NewProjectCreatedEvent creates a project created event.
func NewProjectCreatedEvent(id, name string) ProjectEvent {
	return ProjectEvent{
		ProjectID: id,
		Name:      name,
		Type:      ProjectEventCreated,
		Timestamp: time.Now(),
	}
}

// NewProjectUpdatedEvent creates a project updated event.
func NewProjectUpdatedEvent(id, name string) ProjectEvent {
	return ProjectEvent{
		ProjectID: id,
		Name:      name,
		Type:      ProjectEventUpdated,
		Timestamp: time.Now(),
	}
}

// NewProjectDeletedEvent creates a project deleted event.
func NewProjectDeletedEvent(id string) ProjectEvent {
	return ProjectEvent{
		ProjectID: id,
		Type:      ProjectEventDeleted,
		Timestamp: time.Now(),
	}
}
