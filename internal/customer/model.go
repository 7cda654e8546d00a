package customer

// CreateCustomerRequest is the request body for customer creation
type CreateCustomerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateCustomerRequest carries a partial update; only supplied fields
// change. A supplied password rotates the stored hash.
type UpdateCustomerRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token for subsequent requests
type LoginResponse struct {
	Token string `json:"token"`
}

// TicketSummary is one item of the my-tickets listing
type TicketSummary struct {
	TicketID    int    `json:"ticket_id"`
	VIN         string `json:"VIN"`
	ServiceDate string `json:"service_date"`
	ServiceDesc string `json:"service_desc"`
}
