package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/herbal_api/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency whose reachability is reported by the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// GetHealth responds with service and database status. An unreachable
// database turns the response into a 503 so load balancers drain the node.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, dbStatus := "healthy", "connected"
	code := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		status, dbStatus = "degraded", "disconnected"
		code = http.StatusServiceUnavailable
	}

	utils.Success(c, code, gin.H{
		"status":   status,
		"version":  "1.0.0",
		"uptime":   int(time.Since(startTime).Seconds()),
		"database": dbStatus,
	})
}
