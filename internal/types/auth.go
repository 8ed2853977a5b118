package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CredentialsRequest is the body of the register and login requests.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// User represents a user for API responses (password hash excluded).
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse represents the login response with user data and session token.
type LoginResponse struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterResponse reports the outcome of a registration attempt.
type RegisterResponse struct {
	Registered bool   `json:"registered"`
	User       *User  `json:"user,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Validate validates the CredentialsRequest using the validator.
func (r *CredentialsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
