package inventory

// CreatePartRequest is the request body for part creation
type CreatePartRequest struct {
	Name  string   `json:"name" validate:"required"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

// UpdatePartRequest carries a partial update; only supplied fields change.
type UpdatePartRequest struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price" validate:"omitempty,gte=0"`
}
