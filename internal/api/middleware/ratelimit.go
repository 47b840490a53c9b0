package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/sweetshop/inventory-api/internal/core/domain"
)

var errRateLimited = &domain.Error{Kind: domain.KindTooManyRequests, Message: "Too many requests, please try again later"}

// RateLimit applies a token bucket per client IP. Idle buckets are evicted
// after three minutes.
func RateLimit(rps float64, burst int) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errRateLimited
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return errRateLimited
		},
	})
}
