package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sweetshop/inventory-api/internal/api/handler"
	"github.com/sweetshop/inventory-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to HTTP status codes by kind.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("request rejected")
		}
		return he.Code, handler.ErrorResponse{Error: msg}
	}

	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindValidation:
			return http.StatusBadRequest, handler.ErrorResponse{Error: de.Message, Errors: de.Fields}
		case domain.KindUnauthenticated:
			return http.StatusUnauthorized, handler.ErrorResponse{Error: de.Message}
		case domain.KindForbidden:
			return http.StatusForbidden, handler.ErrorResponse{Error: de.Message}
		case domain.KindNotFound:
			return http.StatusNotFound, handler.ErrorResponse{Error: de.Message}
		case domain.KindConflict:
			return http.StatusBadRequest, handler.ErrorResponse{Error: de.Message}
		case domain.KindInsufficientStock:
			available := de.Available
			return http.StatusBadRequest, handler.ErrorResponse{Error: de.Message, Available: &available}
		case domain.KindTooManyRequests:
			return http.StatusTooManyRequests, handler.ErrorResponse{Error: de.Message}
		case domain.KindInternal:
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Error: "internal server error"}
}
