package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/realtime"
	"github.com/nidohq/nido-api/internal/repository"
)

type ChildService struct {
	childRepo *repository.ChildRepository
	hub       *realtime.Hub
}

func NewChildService(childRepo *repository.ChildRepository, hub *realtime.Hub) *ChildService {
	return &ChildService{childRepo: childRepo, hub: hub}
}

func (s *ChildService) Create(ctx context.Context, c models.Child) (models.Child, error) {
	c.Id = uuid.NewString()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := c.Validate(); err != nil {
		return models.Child{}, err
	}
	if err := s.childRepo.Create(ctx, c); err != nil {
		return models.Child{}, err
	}

	s.hub.Publish(realtime.Event{Collection: "children", Action: realtime.ActionInsert, Id: c.Id, Payload: c})
	return c, nil
}

func (s *ChildService) Get(ctx context.Context, id string) (models.Child, error) {
	return s.childRepo.Get(ctx, id)
}

func (s *ChildService) Update(ctx context.Context, c models.Child) (models.Child, error) {
	existing, err := s.childRepo.Get(ctx, c.Id)
	if err != nil {
		return models.Child{}, err
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	if err := c.Validate(); err != nil {
		return models.Child{}, err
	}
	if err := s.childRepo.Update(ctx, c); err != nil {
		return models.Child{}, err
	}

	s.hub.Publish(realtime.Event{Collection: "children", Action: realtime.ActionUpdate, Id: c.Id, Payload: c})
	return c, nil
}

func (s *ChildService) List(ctx context.Context) ([]models.Child, error) {
	return s.childRepo.List(ctx)
}
