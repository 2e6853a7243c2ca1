package api

import "github.com/taskforge-app/taskforge-api/internal/domain"

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Name     string `json:"name"     validate:"required"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the response for successful registration and login: a
// confirmation message, the signed bearer token, and the public user view.
type AuthResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    domain.PublicUser `json:"user"`
}

// MessageResponse confirms an operation that returns no entity.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the health endpoint body.
type HealthResponse struct {
	Status string `json:"status"`
}
