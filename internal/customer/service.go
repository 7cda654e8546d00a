package customer

import (
	"context"
	"errors"

	"mechanic-service/internal/auth"
	"mechanic-service/internal/httputil"
	"mechanic-service/internal/messaging"
	"mechanic-service/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid input")
)

type Service interface {
	Register(ctx context.Context, req CreateCustomerRequest) (*models.Customer, error)
	Login(ctx context.Context, req LoginRequest) (string, error)
	GetByID(ctx context.Context, id int) (*models.Customer, error)
	ListPage(ctx context.Context, params httputil.PageParams) ([]models.Customer, int, error)
	Update(ctx context.Context, id int, req UpdateCustomerRequest) (*models.Customer, error)
	Delete(ctx context.Context, id int) error
	MyTickets(ctx context.Context, customerID int) ([]TicketSummary, error)
}

type service struct {
	repo   Repository
	tokens *auth.TokenService
	events *messaging.Producer
}

func NewService(repo Repository, tokens *auth.TokenService, events *messaging.Producer) Service {
	return &service{
		repo:   repo,
		tokens: tokens,
		events: events,
	}
}

func (s *service) Register(ctx context.Context, req CreateCustomerRequest) (*models.Customer, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &models.Customer{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hashedPassword),
	})
	if err != nil {
		return nil, err
	}

	s.publish("created", created.ID)
	return created, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (string, error) {
	cust, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cust.PasswordHash), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(cust.ID)
}

func (s *service) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListPage(ctx context.Context, params httputil.PageParams) ([]models.Customer, int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	customers, err := s.repo.List(ctx, params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (s *service) Update(ctx context.Context, id int, req UpdateCustomerRequest) (*models.Customer, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}

	cust, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		cust.Name = *req.Name
	}
	if req.Email != nil && *req.Email != cust.Email {
		existing, err := s.repo.GetByEmail(ctx, *req.Email)
		switch {
		case err == nil && existing.ID != id:
			return nil, ErrEmailExists
		case err != nil && !errors.Is(err, ErrCustomerNotFound):
			return nil, err
		}
		cust.Email = *req.Email
	}
	if req.Phone != nil {
		cust.Phone = *req.Phone
	}
	if req.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		cust.PasswordHash = string(hashedPassword)
	}

	if err := s.repo.Update(ctx, cust); err != nil {
		return nil, err
	}

	s.publish("updated", cust.ID)
	return cust, nil
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

func (s *service) MyTickets(ctx context.Context, customerID int) ([]TicketSummary, error) {
	tickets, err := s.repo.TicketsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	items := make([]TicketSummary, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, TicketSummary{
			TicketID:    t.ID,
			VIN:         t.VIN,
			ServiceDate: t.ServiceDate.Format("2006-01-02"),
			ServiceDesc: t.ServiceDesc,
		})
	}
	return items, nil
}

func (s *service) publish(action string, id int) {
	if s.events == nil {
		return
	}
	// the producer logs its own failures; events never fail the request
	_ = s.events.SendMessage(messaging.NewEvent("customer", action, id))
}
