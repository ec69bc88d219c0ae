// Package pubsub provides a type-safe pub/sub broker implementation.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event.
type EventType string

// Standard event types.
const (
	EventCreated   EventType = "created"
	EventUpdated   EventType = "updated"
	EventDeleted   EventType = "deleted"
	EventStarted   EventType = "started"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventProgress  EventType = "progress"
)

// Event represents a typed event with metadata.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Publisher is the write side of a broker. Services depend on it so tests
// can hand them any publisher.
type Publisher[T any] interface {
	Publish(EventType, T)
}

// Subscriber is the read side of a broker.
type Subscriber[T any] interface {
	Subscribe(context.Context) <-chan Event[T]
}
