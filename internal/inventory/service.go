package inventory

import (
	"context"
	"errors"

	"mechanic-service/internal/httputil"
	"mechanic-service/internal/messaging"
	"mechanic-service/internal/models"
)

var (
	ErrPartNotFound = errors.New("part not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Service interface {
	Create(ctx context.Context, req CreatePartRequest) (*models.Part, error)
	GetByID(ctx context.Context, id int) (*models.Part, error)
	ListPage(ctx context.Context, params httputil.PageParams) ([]models.Part, int, error)
	Update(ctx context.Context, id int, req UpdatePartRequest) (*models.Part, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo   Repository
	events *messaging.Producer
}

func NewService(repo Repository, events *messaging.Producer) Service {
	return &service{
		repo:   repo,
		events: events,
	}
}

func (s *service) Create(ctx context.Context, req CreatePartRequest) (*models.Part, error) {
	created, err := s.repo.Create(ctx, &models.Part{
		Name:  req.Name,
		Price: *req.Price,
	})
	if err != nil {
		return nil, err
	}

	s.publish("created", created.ID)
	return created, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*models.Part, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListPage(ctx context.Context, params httputil.PageParams) ([]models.Part, int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	parts, err := s.repo.List(ctx, params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return parts, total, nil
}

func (s *service) Update(ctx context.Context, id int, req UpdatePartRequest) (*models.Part, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}

	part, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		part.Name = *req.Name
	}
	if req.Price != nil {
		part.Price = *req.Price
	}

	if err := s.repo.Update(ctx, part); err != nil {
		return nil, err
	}

	s.publish("updated", part.ID)
	return part, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish("deleted", id)
	return nil
}

func (s *service) publish(action string, id int) {
	if s.events == nil {
		return
	}
	_ = s.events.SendMessage(messaging.NewEvent("part", action, id))
}
