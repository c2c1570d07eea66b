package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/labstock/backend/internal/infrastructure/logger"
	"github.com/labstock/backend/internal/infrastructure/scheduler"
	"github.com/labstock/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobReporter exposes the state of scheduled jobs.
type JobReporter interface {
	Status() []scheduler.JobStatus
}

const pingTimeout = 2 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                `json:"status"`
	Database  string                `json:"database"`
	Version   string                `json:"version"`
	GoVersion string                `json:"go_version"`
	Uptime    string                `json:"uptime"`
	Time      string                `json:"time"`
	Jobs      []scheduler.JobStatus `json:"jobs,omitempty"`
}

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	BaseHandler
	db        Pinger
	jobs      JobReporter
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. jobs may be nil.
func NewHealthHandler(db Pinger, jobs JobReporter, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		jobs:      jobs,
		version:   version,
		startTime: time.Now(),
	}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Database:  "ok",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Time:      time.Now().Format(time.RFC3339),
	}
	if h.jobs != nil {
		resp.Jobs = h.jobs.Status()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		logger.L(c.Request.Context()).Warn("health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "error"
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    resp,
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeServiceUnhealthy, Message: "Database is unreachable", RequestID: getRequestID(c)},
		})
		return
	}
	h.Success(c, resp)
}
