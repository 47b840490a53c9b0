package handler

import (
	"strings"
	"time"

	"github.com/sweetshop/inventory-api/internal/core/domain"
	"github.com/sweetshop/inventory-api/internal/core/ports"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// toInput trims the username and role; length limits apply to the trimmed
// value. The password is taken as sent.
func (r registerRequest) toInput() ports.RegisterInput {
	return ports.RegisterInput{
		Username: strings.TrimSpace(r.Username),
		Password: r.Password,
		Role:     strings.TrimSpace(r.Role),
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt}
}

type authResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
	Token   string       `json:"token"`
}

type meResponse struct {
	User userResponse `json:"user"`
}
