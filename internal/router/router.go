package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pratyek/medical-amount-detection/internal/config"
	"github.com/pratyek/medical-amount-detection/internal/handler"
	"github.com/pratyek/medical-amount-detection/internal/metrics"
	"github.com/pratyek/medical-amount-detection/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	amountsH *handler.AmountsHandler,
	healthH *handler.HealthHandler,
	m *metrics.Metrics,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	if m != nil {
		r.GET("/metrics", m.Handler())
	}

	v1 := r.Group("/api/v1")

	amounts := v1.Group("/amounts")
	amounts.POST("/text", amountsH.ProcessText)
	amounts.POST("/image", amountsH.ProcessImage)
	amounts.POST("/export", amountsH.ExportText)

	return r
}
