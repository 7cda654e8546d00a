package mechanic

// CreateMechanicRequest is the request body for mechanic creation
type CreateMechanicRequest struct {
	Name   string  `json:"name" validate:"required"`
	Email  string  `json:"email" validate:"required,email"`
	Phone  string  `json:"phone" validate:"required"`
	Salary float64 `json:"salary" validate:"required,gte=0"`
}

// UpdateMechanicRequest carries a partial update; only supplied fields change.
type UpdateMechanicRequest struct {
	Name   *string  `json:"name"`
	Email  *string  `json:"email" validate:"omitempty,email"`
	Phone  *string  `json:"phone"`
	Salary *float64 `json:"salary" validate:"omitempty,gte=0"`
}

// LeaderboardEntry is one row of the assigned-ticket ranking.
type LeaderboardEntry struct {
	ID          int    `bun:"id" json:"id"`
	Name        string `bun:"name" json:"name"`
	Email       string `bun:"email" json:"email"`
	TicketCount int    `bun:"ticket_count" json:"ticket_count"`
}
