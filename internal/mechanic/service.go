package mechanic

import (
	"context"
	"errors"

	"mechanic-service/internal/httputil"
	"mechanic-service/internal/messaging"
	"mechanic-service/internal/models"
)

var (
	ErrMechanicNotFound = errors.New("mechanic not found")
	ErrEmailExists      = errors.New("mechanic email already exists")
	ErrInvalidInput     = errors.New("invalid input")
)

type Service interface {
	Create(ctx context.Context, req CreateMechanicRequest) (*models.Mechanic, error)
	GetByID(ctx context.Context, id int) (*models.Mechanic, error)
	ListPage(ctx context.Context, params httputil.PageParams) ([]models.Mechanic, int, error)
	Update(ctx context.Context, id int, req UpdateMechanicRequest) (*models.Mechanic, error)
	Delete(ctx context.Context, id int) error
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)
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

func (s *service) Create(ctx context.Context, req CreateMechanicRequest) (*models.Mechanic, error) {
	created, err := s.repo.Create(ctx, &models.Mechanic{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Salary: req.Salary,
	})
	if err != nil {
		return nil, err
	}

	s.publish("created", created.ID)
	return created, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*models.Mechanic, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListPage(ctx context.Context, params httputil.PageParams) ([]models.Mechanic, int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	mechanics, err := s.repo.List(ctx, params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return mechanics, total, nil
}

func (s *service) Update(ctx context.Context, id int, req UpdateMechanicRequest) (*models.Mechanic, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}

	mech, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		mech.Name = *req.Name
	}
	if req.Email != nil && *req.Email != mech.Email {
		existing, err := s.repo.GetByEmail(ctx, *req.Email)
		switch {
		case err == nil && existing.ID != id:
			return nil, ErrEmailExists
		case err != nil && !errors.Is(err, ErrMechanicNotFound):
			return nil, err
		}
		mech.Email = *req.Email
	}
	if req.Phone != nil {
		mech.Phone = *req.Phone
	}
	if req.Salary != nil {
		mech.Salary = *req.Salary
	}

	if err := s.repo.Update(ctx, mech); err != nil {
		return nil, err
	}

	s.publish("updated", mech.ID)
	return mech, nil
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

func (s *service) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	return s.repo.Leaderboard(ctx)
}

func (s *service) publish(action string, id int) {
	if s.events == nil {
		return
	}
	_ = s.events.SendMessage(messaging.NewEvent("mechanic", action, id))
}
