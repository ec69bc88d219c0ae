package message

import (
	"context"

	"github.com/parley-ai/parley/internal/events"
	"github.com/parley-ai/parley/internal/pubsub"
)

// Service manages messages with pub/sub change notification. The broker is
// the live-subscription primitive: every committed write is announced on it.
type Service struct {
	store  Store
	broker pubsub.Publisher[events.MessageEvent]
}

// NewService creates a new message service.
func NewService(store Store, broker pubsub.Publisher[events.MessageEvent]) *Service {
	return &Service{
		store:  store,
		broker: broker,
	}
}

// Add commits a new message and announces it.
func (s *Service) Add(ctx context.Context, msg *Message) error {
	if err := s.store.Create(ctx, msg); err != nil {
		return err
	}

	if s.broker != nil {
		s.broker.Publish(pubsub.EventCreated,
			events.NewMessageAddedEvent(msg.SessionID, msg.ID, string(msg.Role), msg.Content))
	}

	return nil
}

// Get retrieves a message by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Message, error) {
	return s.store.Get(ctx, id)
}

// GetBySession returns all messages for a session in conversation order.
func (s *Service) GetBySession(ctx context.Context, sessionID string) ([]*Message, error) {
	return s.store.GetBySession(ctx, sessionID)
}

// Count returns the number of messages in a session.
func (s *Service) Count(ctx context.Context, sessionID string) (int64, error) {
	return s.store.Count(ctx, sessionID)
}

// Clear removes all messages from a session.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteBySession(ctx, sessionID); err != nil {
		return err
	}

	if s.broker != nil {
		s.broker.Publish(pubsub.EventDeleted,
			events.NewMessagesClearedEvent(sessionID))
	}

	return nil
}
