package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sweetshop/inventory-api/docs"
	"github.com/sweetshop/inventory-api/internal/api/handler"
	"github.com/sweetshop/inventory-api/internal/api/metrics"
	"github.com/sweetshop/inventory-api/internal/api/middleware"
	"github.com/sweetshop/inventory-api/internal/core/ports"
	"github.com/sweetshop/inventory-api/internal/infrastructure/http/handlers"
)

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	AuthService    ports.AuthService
	ProductService ports.ProductService
	Logger         zerolog.Logger

	// Registry receives HTTP and business metrics and backs /metrics.
	// Nil disables both.
	Registry *prometheus.Registry
	// Readiness lists the dependencies probed by /health/ready.
	Readiness []handlers.Dependency

	CORSOrigins    []string
	BodyLimit      string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if d.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(d.BodyLimit))
	}

	var m *metrics.Metrics
	if d.Registry != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "http",
			Registerer: d.Registry,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: d.Registry,
		}))
		m = metrics.New(d.Registry)
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.AuthService, m)
	productHandler := handler.NewProductHandler(d.ProductService, m)
	authenticate := middleware.Authenticate(d.AuthService)
	requireAdmin := middleware.RequireAdmin()

	// --- Auth routes ---
	auth := e.Group("/auth")
	if d.RateLimitRPS > 0 {
		auth.Use(middleware.RateLimit(d.RateLimitRPS, d.RateLimitBurst))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authenticate)

	// --- Product routes ---
	products := e.Group("/products")
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)
	products.POST("", productHandler.Create, authenticate, requireAdmin)
	products.PUT("/:id", productHandler.Update, authenticate, requireAdmin)
	products.DELETE("/:id", productHandler.Delete, authenticate, requireAdmin)
	products.POST("/:id/purchase", productHandler.Purchase, authenticate)
	products.POST("/:id/restock", productHandler.Restock, authenticate, requireAdmin)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Readiness...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
