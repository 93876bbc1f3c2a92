package routes

import (
	"github.com/labstack/echo/v4"

	"proofpop/internal/auth"
	"proofpop/internal/handlers"
	"proofpop/internal/security"
)

func SetupRoutes(api *echo.Group, h *handlers.Handler, ingest *auth.IngestAuth, siteLimiter *security.KeyLimiter) {
	api.GET("/health", handlers.HealthCheck)

	// Pixel routes, called from visitors' browsers
	api.GET("/widgets/batch", h.GetWidgetBatch)
	api.POST("/track", h.Track, auth.RateLimitMiddleware)
	api.POST("/verify-pixel", h.VerifyPixel, auth.RateLimitMiddleware)

	// Server-to-server ingest
	if ingest != nil {
		v1 := api.Group("/v1")
		v1.Use(ingest.Middleware)
		if siteLimiter != nil {
			v1.Use(siteLimiter.Middleware(auth.SiteIDKey))
		}
		v1.POST("/events", h.Ingest)
		v1.GET("/install", h.InstallStatus)
	}
}
