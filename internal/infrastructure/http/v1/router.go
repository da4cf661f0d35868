// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"vcbot/internal/domain/assistant"
	"vcbot/internal/domain/auth"
	"vcbot/internal/domain/bills"
	"vcbot/internal/domain/querylog"
	"vcbot/internal/domain/reference"
	"vcbot/internal/domain/search"
	"vcbot/internal/infrastructure/http/v1/handlers"
	"vcbot/internal/infrastructure/http/v1/middleware"
	"vcbot/internal/observability"
	"vcbot/pkg/logger"
)

// RouterConfig holds the services the API serves.
type RouterConfig struct {
	Logger *logger.Logger

	// JWTValidator for token validation.
	JWTValidator middleware.JWTValidator

	// AuthService for the login endpoint.
	AuthService *auth.Service

	// References is the reference-number allocator.
	References *reference.Service

	// Bills is the bill catalog. Optional.
	Bills *bills.Service

	// Search is the vector search service. Optional.
	Search *search.Service

	// Assistant answers user questions. Optional.
	Assistant *assistant.Service

	// Queries is the assistant query log. Optional.
	Queries querylog.Store

	// ReadyChecks are named dependency probes for /health/ready.
	ReadyChecks map[string]handlers.ReadyCheck
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health and metrics endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.ReadyChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	router.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	base := handlers.NewBaseHandler()

	// API v1
	api := router.Group("/api/v1")
	{
		if cfg.AuthService != nil {
			authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
			api.POST("/auth/login", authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		refHandler := handlers.NewReferenceHandler(base, cfg.References)
		refs := protected.Group("/references")
		{
			refs.GET("", refHandler.List)
			refs.GET("/:type", refHandler.Get)
			refs.POST("/:type/allocate", refHandler.Allocate)
			refs.POST("/:type/override", middleware.RequireRole("clerk", "admin"), refHandler.Override)
		}

		if cfg.Bills != nil {
			billHandler := handlers.NewBillHandler(base, cfg.Bills)
			billRoutes := protected.Group("/bills")
			{
				billRoutes.GET("", billHandler.List)
				billRoutes.GET("/:id", billHandler.Get)
				billRoutes.POST("", middleware.RequireRole("clerk", "admin"), billHandler.Create)
				billRoutes.PUT("/:id/pdf", middleware.RequireRole("clerk", "admin"), billHandler.AttachPDF)
			}
		}

		if cfg.Search != nil {
			searchHandler := handlers.NewSearchHandler(base, cfg.Search)
			protected.POST("/search", searchHandler.Search)
		}

		if cfg.Assistant != nil {
			assistantHandler := handlers.NewAssistantHandler(base, cfg.Assistant)
			protected.POST("/assistant/ask", assistantHandler.Ask)
		}

		if cfg.Queries != nil {
			queryHandler := handlers.NewQueryLogHandler(base, cfg.Queries)
			protected.GET("/queries", middleware.RequireRole("admin"), queryHandler.Recent)
		}
	}

	return router
}
