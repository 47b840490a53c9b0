package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sweetshop/inventory-api/internal/api/middleware"
	"github.com/sweetshop/inventory-api/internal/core/domain"
)

// currentUser extracts the account injected by the Authenticate middleware.
// A missing account means the route was wired without it.
func currentUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, domain.ErrAuthRequired
	}
	return user, nil
}
