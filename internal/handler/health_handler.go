package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthHandler provides health endpoint.
type HealthHandler struct {
	checks map[string]Check
	panels func() int
}

// NewHealthHandler creates a new HealthHandler. panels reports the number of
// open selection panels and may be nil.
func NewHealthHandler(checks map[string]Check, panels func() int) *HealthHandler {
	return &HealthHandler{checks: checks, panels: panels}
}

// GetHealth responds with the status of every dependency.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = "disconnected"
			status = "degraded"
			continue
		}
		deps[name] = "connected"
	}

	data := gin.H{
		"status":       status,
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"dependencies": deps,
	}
	if h.panels != nil {
		data["openPanels"] = h.panels()
	}

	code := 200
	if status != "healthy" {
		code = 503
	}
	c.JSON(code, gin.H{
		"success": status == "healthy",
		"code":    code,
		"message": "Service is " + status,
		"data":    data,
	})
}
