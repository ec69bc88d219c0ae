package events

import "time"

// MessageSnapshot is one entry of a conversation view snapshot.
// Pending marks the transient placeholder for an in-flight reply; a pending
// entry is never persisted and is always the last element of a snapshot.
type MessageSnapshot struct {
	ID      int64
	Role    string
	Text    string
	Pending bool
}

// ViewEvent carries a full conversation snapshot for one session.
// Each publication carries the complete message list to date, so consumers
// can drop or coalesce intermediate events without losing anything.
type ViewEvent struct {
	SessionID string
	Messages  []MessageSnapshot
	Timestamp time.Time
}

// NewViewEvent creates a view snapshot event.
func NewViewEvent(sessionID string, messages []MessageSnapshot) ViewEvent {
	return ViewEvent{
		SessionID: sessionID,
		Messages:  messages,
		Timestamp: time.Now(),
	}
}
