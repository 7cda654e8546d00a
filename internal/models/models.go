package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Customer owns zero or more service tickets. Deleting a customer
// cascades to its tickets and their association rows.
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID           int    `bun:"id,pk,autoincrement" json:"id"`
	Name         string `bun:"name,notnull" json:"name"`
	Email        string `bun:"email,unique,notnull" json:"email"`
	Phone        string `bun:"phone,notnull" json:"phone"`
	PasswordHash string `bun:"password_hash,notnull" json:"-"` // Never expose credential in JSON

	Tickets []*ServiceTicket `bun:"rel:has-many,join:id=customer_id" json:"-"`
}

type Mechanic struct {
	bun.BaseModel `bun:"table:mechanics,alias:m"`

	ID     int     `bun:"id,pk,autoincrement" json:"id"`
	Name   string  `bun:"name,notnull" json:"name"`
	Email  string  `bun:"email,unique,notnull" json:"email"`
	Phone  string  `bun:"phone,notnull" json:"phone"`
	Salary float64 `bun:"salary,notnull" json:"salary"`
}

// Part is an inventory item that can be attached to tickets.
type Part struct {
	bun.BaseModel `bun:"table:inventory,alias:p"`

	ID    int     `bun:"id,pk,autoincrement" json:"id"`
	Name  string  `bun:"name,notnull" json:"name"`
	Price float64 `bun:"price,notnull" json:"price"`
}

type ServiceTicket struct {
	bun.BaseModel `bun:"table:service_tickets,alias:st"`

	ID          int       `bun:"id,pk,autoincrement" json:"id"`
	VIN         string    `bun:"vin,notnull" json:"VIN"`
	ServiceDate time.Time `bun:"service_date,notnull" json:"-"`
	ServiceDesc string    `bun:"service_desc,notnull" json:"service_desc"`
	CustomerID  int       `bun:"customer_id,notnull" json:"customer_id"`

	Mechanics []*Mechanic `bun:"m2m:ticket_mechanics,join:Ticket=Mechanic" json:"-"`
	Parts     []*Part     `bun:"m2m:ticket_parts,join:Ticket=Part" json:"-"`
}

// TicketMechanic is the join row linking a ticket to an assigned mechanic.
type TicketMechanic struct {
	bun.BaseModel `bun:"table:ticket_mechanics,alias:tm"`

	TicketID   int            `bun:"ticket_id,pk"`
	Ticket     *ServiceTicket `bun:"rel:belongs-to,join:ticket_id=id"`
	MechanicID int            `bun:"mechanic_id,pk"`
	Mechanic   *Mechanic      `bun:"rel:belongs-to,join:mechanic_id=id"`
}

// TicketPart is the join row linking a ticket to a used part.
type TicketPart struct {
	bun.BaseModel `bun:"table:ticket_parts,alias:tp"`

	TicketID int            `bun:"ticket_id,pk"`
	Ticket   *ServiceTicket `bun:"rel:belongs-to,join:ticket_id=id"`
	PartID   int            `bun:"part_id,pk"`
	Part     *Part          `bun:"rel:belongs-to,join:part_id=id"`
}

// All lists every model in migration order; join tables last.
func All() []interface{} {
	return []interface{}{
		(*Customer)(nil),
		(*Mechanic)(nil),
		(*Part)(nil),
		(*ServiceTicket)(nil),
		(*TicketMechanic)(nil),
		(*TicketPart)(nil),
	}
}

// RegisterJoinModels must be called on every bun.DB before any query
// that traverses the many-to-many relations.
func RegisterJoinModels(db *bun.DB) {
	db.RegisterModel((*TicketMechanic)(nil), (*TicketPart)(nil))
}
