package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pratyek/medical-amount-detection/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	ocr port.OCREngine
}

// NewHealthHandler creates a new HealthHandler. ocr may be nil for
// text-only deployments.
func NewHealthHandler(ocr port.OCREngine) *HealthHandler {
	return &HealthHandler{ocr: ocr}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"ocr_enabled": h.ocr != nil,
	})
}
