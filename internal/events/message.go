package events

import "time"

// MessageEventType represents message store change event types.
type MessageEventType string

// Message event type constants.
const (
	MessageEventAdded   MessageEventType = "added"
	MessageEventCleared MessageEventType = "cleared"
)

// MessageEvent represents a change in the persisted message log.
type MessageEvent struct {
	SessionID string
	MessageID int64
	Role      string
	Text      string
	Type      MessageEventType
	Timestamp time.Time
}

// NewMessageAddedEvent creates a message added event.
func NewMessageAddedEvent(sessionID string, messageID int64, role, text string) MessageEvent {
	return MessageEvent{
		SessionID: sessionID,
		MessageID: messageID,
		Role:      role,
		Text:      text,
		Type:      MessageEventAdded,
		Timestamp: time.Now(),
	}
}

// NewMessagesClearedEvent creates an event for a session's log being cleared.
func NewMessagesClearedEvent(sessionID string) MessageEvent {
	return MessageEvent{
		SessionID: sessionID,
		Type:      MessageEventCleared,
		Timestamp: time.Now(),
	}
}
