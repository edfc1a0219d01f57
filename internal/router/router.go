package router

import (
	"net/http"

	"crimewatch/internal/config"
	"crimewatch/internal/domain/mailer"
	"crimewatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

// New creates and configures the Gin router with all middleware and routes.
func New(
	cfg *config.Config,
	mailHandler *mailer.Handler,
) *gin.Engine {
	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()

	// Global middleware stack (order matters)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	// Rate limiter
	rateLimiter := middleware.NewRateLimiter(
		cfg.RateLimit.RequestsPerSecond,
		cfg.RateLimit.Burst,
	)
	r.Use(rateLimiter.Middleware())

	r.Use(gin.Logger())

	// Public liveness probe
	r.GET("/health", healthCheck)

	// Email API. Served unauthenticated unless API keys are configured.
	api := r.Group("/api/email")
	if len(cfg.Auth.APIKeys) > 0 {
		api.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	mailHandler.RegisterRoutes(api)

	return r
}

// healthCheck handles GET /health
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "Server is running"})
}
