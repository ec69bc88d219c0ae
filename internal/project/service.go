package project

import (
	"context"

	"github.com/google/uuid"

	"github.com/parley-ai/parley/internal/events"
	"github.com/parley-ai/parley/internal/pubsub"
)

// Service manages projects with pub/sub event publishing.
type Service struct {
	store  Store
	broker pubsub.Publisher[events.ProjectEvent]
}

// NewService creates a new project service.
func NewService(store Store, broker pubsub.Publisher[events.ProjectEvent]) *Service {
	return &Service{
		store:  store,
		broker: broker,
	}
}

// Create creates a new project.
func (s *Service) Create(ctx context.Context, name, instructions string) (*Project, error) {
	id := uuid.New().String()

	proj, err := s.store.Create(ctx, id, name, instructions)
	if err != nil {
		return nil, err
	}

	if s.broker != nil {
		s.broker.Publish(pubsub.EventCreated,
			events.NewProjectCreatedEvent(proj.ID, proj.Name))
	}

	return proj, nil
}

// Get retrieves a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.store.Get(ctx, id)
}

// List returns all projects.
func (s *Service) List(ctx context.Context) ([]*Project, error) {
	return s.store.List(ctx)
}

// Update rewrites a project's name and instructions.
func (s *Service) Update(ctx context.Context, id, name, instructions string) error {
	if err := s.store.Update(ctx, id, name, instructions); err != nil {
		return err
	}

	if s.broker != nil {
		s.broker.Publish(pubsub.EventUpdated,
			events.NewProjectUpdatedEvent(id, name))
	}

	return nil
}

// Delete removes a project by ID, cascading to its sessions and messages.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if s.broker != nil {
		s.broker.Publish(pubsub.EventDeleted,
			events.NewProjectDeletedEvent(id))
	}

	return nil
}
