package dto

import "washpos/internal/model"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

type RefreshResponse struct {
	Token string `json:"token"`
}
