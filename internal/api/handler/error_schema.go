package handler

import "github.com/sweetshop/inventory-api/internal/core/domain"

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error     string              `json:"error"`
	Errors    []domain.FieldError `json:"errors,omitempty"`
	Available *int                `json:"available,omitempty"`
}
