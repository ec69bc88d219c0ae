package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/parley-ai/parley/internal/events"
	"github.com/parley-ai/parley/internal/pubsub"
)

// Service manages sessions with pub/sub event publishing.
type Service struct {
	store  Store
	broker pubsub.Publisher[events.SessionEvent]
}

// NewService creates a new session service.
func NewService(store Store, broker pubsub.Publisher[events.SessionEvent]) *Service {
	return &Service{
		store:  store,
		broker: broker,
	}
}

// Create creates a new session under the given project (empty for
// standalone) with the default placeholder title.
func (s *Service) Create(ctx context.Context, projectID string) (*Session, error) {
	id := uuid.New().String()

	sess, err := s.store.Create(ctx, id, projectID, DefaultTitle)
	if err != nil {
		return nil, err
	}

	if s.broker != nil {
		s.broker.Publish(pubsub.EventCreated,
			events.NewSessionCreatedEvent(sess.ID, sess.ProjectID, sess.Title))
	}

	return sess, nil
}

// Get retrieves a session by ID.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// List returns all sessions.
func (s *Service) List(ctx context.Context) ([]*Session, error) {
	return s.store.List(ctx)
}

// ListByProject returns a project's sessions; empty projectID lists the
// standalone ones.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]*Session, error) {
	return s.store.ListByProject(ctx, projectID)
}

// UpdateTitle updates the title of a session.
func (s *Service) UpdateTitle(ctx context.Context, id, title string) error {
	if err := s.store.UpdateTitle(ctx, id, title); err != nil {
		return err
	}

	if s.broker != nil {
		s.broker.Publish(pubsub.EventUpdated,
			events.NewSessionRenamedEvent(id, title))
	}

	return nil
}

// Touch bumps a session's updated_at timestamp.
func (s *Service) Touch(ctx context.Context, id string) error {
	return s.store.Touch(ctx, id)
}

// Delete removes a session by ID, cascading to its messages.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if s.broker != nil {
		s.broker.Publish(pubsub.EventDeleted,
			events.NewSessionDeletedEvent(id))
	}

	return nil
}
