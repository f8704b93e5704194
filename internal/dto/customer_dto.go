package dto

type CreateCustomerRequest struct {
	Name  string  `json:"name" validate:"required"`
	Phone string  `json:"phone" validate:"required"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

// UpdateCustomerRequest carries partial edits. Nil fields are left untouched.
type UpdateCustomerRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,min=1"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}
