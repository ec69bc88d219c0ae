// Package events defines the typed payloads published on the pubsub brokers.
package events

import "time"

// TurnEventType represents turn lifecycle event types.
type TurnEventType string

// Turn event type constants.
const (
	// TurnEventStarted is published when a turn begins; UI layers raise
	// their busy indicator on it.
	TurnEventStarted TurnEventType = "started"
	// TurnEventFragment carries one streamed text delta.
	TurnEventFragment TurnEventType = "fragment"
	// TurnEventCompleted is published after the final message is committed.
	TurnEventCompleted TurnEventType = "completed"
	// TurnEventFailed is published after a provider failure was committed
	// as an error message.
	TurnEventFailed TurnEventType = "failed"
)

// TurnEvent represents one step in a turn's lifecycle.
type TurnEvent struct {
	SessionID string
	Model     string
	Type      TurnEventType
	Delta     string // for Fragment
	Cause     string // for Failed
	Timestamp time.Time
}

// NewTurnStartedEvent creates a turn started event.
func NewTurnStartedEvent(sessionID, model string) TurnEvent {
	return TurnEvent{
		SessionID: sessionID,
		Model:     model,
		Type:      TurnEventStarted,
		Timestamp: time.Now(),
	}
}

// NewTurnFragmentEvent creates a fragment event carrying one text delta.
func NewTurnFragmentEvent(sessionID, delta string) TurnEvent {
	return TurnEvent{
		SessionID: sessionID,
		Type:      TurnEventFragment,
		Delta:     delta,
		Timestamp: time.Now(),
	}
}

// NewTurnCompletedEvent creates a turn completed event.
func NewTurnCompletedEvent(sessionID string) TurnEvent {
	return TurnEvent{
		SessionID: sessionID,
		Type:      TurnEventCompleted,
		Timestamp: time.Now(),
	}
}

// NewTurnFailedEvent creates a turn failed event.
func NewTurnFailedEvent(sessionID string, err error) TurnEvent {
	e := TurnEvent{
		SessionID: sessionID,
		Type:      TurnEventFailed,
		Timestamp: time.Now(),
	}
	if err != nil {
		e.Cause = err.Error()
	}
	return e
}
