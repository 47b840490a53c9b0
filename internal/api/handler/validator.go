package handler

import (
	"github.com/sweetshop/inventory-api/internal/core/validation"
)

// echoValidator adapts the shared validator so Echo can call c.Validate(req).
type echoValidator struct{}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{}
}

// Validate satisfies the echo.Validator interface. Failures are returned as a
// *domain.Error listing every rejected field.
func (echoValidator) Validate(i any) error {
	return validation.Struct(i)
}
