package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/landrecords/internal/logger"
	"github.com/stwalsh4118/landrecords/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout bounds each dependency ping in the readiness check
	HealthCheckTimeout = 2 * time.Second
)

// Pinger is a dependency the readiness check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	db        Pinger
	redis     Pinger
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler. redis may be nil when upload
// locks are kept in process.
func NewHealthHandler(db Pinger, redis Pinger, env string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redis:     redis,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health. It never checks dependencies.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready. Returns 503 if the database, or Redis
// when configured, cannot be reached.
func (h *HealthHandler) Ready(c *gin.Context) {
	resp := ReadyResponse{Status: "ready", Database: "connected"}
	status := http.StatusOK

	if err := h.ping(c, h.db); err != nil {
		h.logFailure(c, "Database health check failed", err)
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		resp.Redis = "connected"
		if err := h.ping(c, h.redis); err != nil {
			h.logFailure(c, "Redis health check failed", err)
			resp.Redis = "disconnected"
			status = http.StatusServiceUnavailable
		}
	}

	if status != http.StatusOK {
		resp.Status = "not_ready"
	}
	c.JSON(status, resp)
}

// Info handles GET /api/v1/info.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(time.Since(h.startTime)),
	})
}

func (h *HealthHandler) ping(c *gin.Context, p Pinger) error {
	if p == nil {
		return fmt.Errorf("not configured")
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()
	return p.Ping(ctx)
}

func (h *HealthHandler) logFailure(c *gin.Context, msg string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error(msg, err, logger.Fields{
			"timeout": HealthCheckTimeout.String(),
		})
	}
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
