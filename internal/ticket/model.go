package ticket

import (
	"time"

	"mechanic-service/internal/models"
)

// ServiceDateLayout is the wire format for service dates.
const ServiceDateLayout = "2006-01-02"

type CreateTicketRequest struct {
	VIN         string `json:"VIN" validate:"required"`
	ServiceDate string `json:"service_date" validate:"required,datetime=2006-01-02"`
	ServiceDesc string `json:"service_desc" validate:"required"`
	CustomerID  int    `json:"customer_id" validate:"required,gt=0"`
	MechanicIDs []int  `json:"mechanic_ids" validate:"omitempty,dive,gt=0"`
}

type UpdateTicketRequest struct {
	VIN         *string `json:"VIN" validate:"omitempty,min=1"`
	ServiceDate *string `json:"service_date" validate:"omitempty,datetime=2006-01-02"`
	ServiceDesc *string `json:"service_desc" validate:"omitempty,min=1"`
	MechanicIDs *[]int  `json:"mechanic_ids" validate:"omitempty,dive,gt=0"`
}

// EditMechanicsRequest adds and removes mechanics in one operation.
// Adding an already assigned mechanic or removing an unassigned one is
// a no-op, not an error.
type EditMechanicsRequest struct {
	AddIDs    []int `json:"add_ids" validate:"omitempty,dive,gt=0"`
	RemoveIDs []int `json:"remove_ids" validate:"omitempty,dive,gt=0"`
}

type MechanicSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type PartSummary struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type TicketResponse struct {
	ID          int               `json:"id"`
	VIN         string            `json:"VIN"`
	ServiceDate string            `json:"service_date"`
	ServiceDesc string            `json:"service_desc"`
	CustomerID  int               `json:"customer_id"`
	Mechanics   []MechanicSummary `json:"mechanics"`
	Parts       []PartSummary     `json:"parts"`
}

func newTicketResponse(t *models.ServiceTicket) TicketResponse {
	resp := TicketResponse{
		ID:          t.ID,
		VIN:         t.VIN,
		ServiceDate: t.ServiceDate.Format(ServiceDateLayout),
		ServiceDesc: t.ServiceDesc,
		CustomerID:  t.CustomerID,
		Mechanics:   []MechanicSummary{},
		Parts:       []PartSummary{},
	}
	for _, m := range t.Mechanics {
		resp.Mechanics = append(resp.Mechanics, MechanicSummary{ID: m.ID, Name: m.Name})
	}
	for _, p := range t.Parts {
		resp.Parts = append(resp.Parts, PartSummary{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	return resp
}

func newTicketResponses(tickets []models.ServiceTicket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, newTicketResponse(&tickets[i]))
	}
	return out
}

func parseServiceDate(value string) (time.Time, error) {
	return time.Parse(ServiceDateLayout, value)
}
