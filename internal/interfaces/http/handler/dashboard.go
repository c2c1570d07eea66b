package handler

import (
	"github.com/gin-gonic/gin"
	appdashboard "github.com/labstock/backend/internal/application/dashboard"
)

// DashboardHandler serves the stock rollup and the manual expiry scan.
type DashboardHandler struct {
	BaseHandler
	dashboard *appdashboard.DashboardService
	scanner   *appdashboard.ExpiryScanService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard *appdashboard.DashboardService, scanner *appdashboard.ExpiryScanService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, scanner: scanner}
}

// Summary handles GET /dashboard.
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Scan handles POST /dashboard/expiry-scan.
func (h *DashboardHandler) Scan(c *gin.Context) {
	result, err := h.scanner.Scan(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Expiry scan completed", result)
}
