package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	appdashboard "github.com/labstock/backend/internal/application/dashboard"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/internal/infrastructure/scheduler"
	"github.com/labstock/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJobs []scheduler.JobStatus

func (s stubJobs) Status() []scheduler.JobStatus { return s }

func serveHealth(t *testing.T, h *HealthHandler) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.GET("/health", h.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler(failingPinger{}, stubJobs{{Name: "expiry-scan", Runs: 3}}, "1.2.0")
		w := serveHealth(t, h)
		require.Equal(t, http.StatusOK, w.Code)
		var body HealthResponse
		decode(t, w, &body)
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "1.2.0", body.Version)
		require.Len(t, body.Jobs, 1)
		assert.Equal(t, int64(3), body.Jobs[0].Runs)
	})

	t.Run("database down", func(t *testing.T) {
		h := NewHealthHandler(failingPinger{err: errDown}, nil, "1.2.0")
		w := serveHealth(t, h)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var body HealthResponse
		resp := decode(t, w, &body)
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, dto.ErrCodeServiceUnhealthy, resp.Error.Code)
	})
}

func TestDashboardHandler(t *testing.T) {
	e := newTestEnv(t)
	registerItem(t, e, stock.CategoryBooks, map[string]any{"item_name": "Atlas", "total_quantity": 3, "min_stock_level": 5})
	registerItem(t, e, stock.CategoryGlasswares, map[string]any{"item_name": "Flask", "total_quantity": 10})
	registerItem(t, e, stock.CategoryChemicals, map[string]any{"item_name": "Benzene"})

	w := e.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary appdashboard.Response
	decode(t, w, &summary)
	assert.Equal(t, int64(3), summary.TotalCount)
	assert.Equal(t, int64(1), summary.LowStockCount)
	assert.Equal(t, int64(1), summary.ZeroStockCount)
	assert.Equal(t, int64(1), summary.InStockCount)
	assert.Len(t, summary.Categories, len(stock.AllCategories()))

	w = e.do(t, http.MethodPost, "/api/v1/dashboard/expiry-scan", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var scan appdashboard.ScanResult
	resp := decode(t, w, &scan)
	assert.Equal(t, "Expiry scan completed", resp.Message)
	assert.Zero(t, scan.NotificationsCreated)
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped domain error", fmt.Errorf("issue: %w", shared.ErrInsufficientStock), http.StatusBadRequest, "INSUFFICIENT_STOCK"},
		{"optimistic lock", shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "stale"), http.StatusConflict, "OPTIMISTIC_LOCK_FAILED"},
		{"plain error", errDown, http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(RequestIDKey, "req-1")

			var h BaseHandler
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w, nil)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}
