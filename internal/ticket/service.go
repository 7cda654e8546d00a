package ticket

import (
	"context"
	"errors"

	"mechanic-service/internal/httputil"
	"mechanic-service/internal/messaging"
	"mechanic-service/internal/models"
)

var (
	ErrTicketNotFound  = errors.New("service ticket not found")
	ErrUnknownCustomer = errors.New("customer does not exist")
	ErrUnknownMechanic = errors.New("mechanic does not exist")
	ErrUnknownPart     = errors.New("part does not exist")
	ErrInvalidInput    = errors.New("invalid input")
)

type Service interface {
	Create(ctx context.Context, req CreateTicketRequest) (TicketResponse, error)
	GetByID(ctx context.Context, id int) (TicketResponse, error)
	ListPage(ctx context.Context, params httputil.PageParams) ([]TicketResponse, int, error)
	Update(ctx context.Context, id int, req UpdateTicketRequest) (TicketResponse, error)
	EditMechanics(ctx context.Context, id int, req EditMechanicsRequest) (TicketResponse, error)
	AttachPart(ctx context.Context, ticketID, partID int) (TicketResponse, error)
	Delete(ctx context.Context, id int) error
	OwnerID(ctx context.Context, id int) (int, error)
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

func (s *service) Create(ctx context.Context, req CreateTicketRequest) (TicketResponse, error) {
	serviceDate, err := parseServiceDate(req.ServiceDate)
	if err != nil {
		return TicketResponse{}, ErrInvalidInput
	}

	created, err := s.repo.Create(ctx, &models.ServiceTicket{
		VIN:         req.VIN,
		ServiceDate: serviceDate,
		ServiceDesc: req.ServiceDesc,
		CustomerID:  req.CustomerID,
	}, req.MechanicIDs)
	if err != nil {
		return TicketResponse{}, err
	}

	s.publish("created", created.ID)
	return newTicketResponse(created), nil
}

func (s *service) GetByID(ctx context.Context, id int) (TicketResponse, error) {
	if id <= 0 {
		return TicketResponse{}, ErrInvalidInput
	}
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return TicketResponse{}, err
	}
	return newTicketResponse(ticket), nil
}

func (s *service) ListPage(ctx context.Context, params httputil.PageParams) ([]TicketResponse, int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	tickets, err := s.repo.List(ctx, params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return newTicketResponses(tickets), total, nil
}

func (s *service) Update(ctx context.Context, id int, req UpdateTicketRequest) (TicketResponse, error) {
	if id <= 0 {
		return TicketResponse{}, ErrInvalidInput
	}

	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return TicketResponse{}, err
	}

	if req.VIN != nil {
		ticket.VIN = *req.VIN
	}
	if req.ServiceDate != nil {
		serviceDate, err := parseServiceDate(*req.ServiceDate)
		if err != nil {
			return TicketResponse{}, ErrInvalidInput
		}
		ticket.ServiceDate = serviceDate
	}
	if req.ServiceDesc != nil {
		ticket.ServiceDesc = *req.ServiceDesc
	}

	if err := s.repo.Update(ctx, ticket, req.MechanicIDs); err != nil {
		return TicketResponse{}, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return TicketResponse{}, err
	}

	s.publish("updated", id)
	return newTicketResponse(updated), nil
}

func (s *service) EditMechanics(ctx context.Context, id int, req EditMechanicsRequest) (TicketResponse, error) {
	if id <= 0 {
		return TicketResponse{}, ErrInvalidInput
	}

	if err := s.repo.EditMechanics(ctx, id, req.AddIDs, req.RemoveIDs); err != nil {
		return TicketResponse{}, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return TicketResponse{}, err
	}

	s.publish("mechanics_edited", id)
	return newTicketResponse(updated), nil
}

func (s *service) AttachPart(ctx context.Context, ticketID, partID int) (TicketResponse, error) {
	if ticketID <= 0 || partID <= 0 {
		return TicketResponse{}, ErrInvalidInput
	}

	if err := s.repo.AttachPart(ctx, ticketID, partID); err != nil {
		return TicketResponse{}, err
	}

	updated, err := s.repo.GetByID(ctx, ticketID)
	if err != nil {
		return TicketResponse{}, err
	}

	s.publish("part_attached", ticketID)
	return newTicketResponse(updated), nil
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

func (s *service) OwnerID(ctx context.Context, id int) (int, error) {
	return s.repo.OwnerID(ctx, id)
}

func (s *service) publish(action string, id int) {
	if s.events == nil {
		return
	}
	_ = s.events.SendMessage(messaging.NewEvent("service_ticket", action, id))
}
