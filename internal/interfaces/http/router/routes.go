package router

import (
	"github.com/gin-gonic/gin"
	"github.com/labstock/backend/internal/interfaces/http/handler"
)

// Handlers bundles everything served by the API.
type Handlers struct {
	Stock         []*handler.StockHandler
	Dashboard     *handler.DashboardHandler
	Notifications *handler.NotificationHandler
	Inwards       *handler.InwardHandler
	Requests      *handler.LabRequestHandler
	Health        *handler.HealthHandler
}

// Guards gate routes by caller. A nil guard lets every caller through.
// Staff guards writes to stock records; Admin guards maintenance endpoints and
// the review of lab requests.
type Guards struct {
	Staff gin.HandlerFunc
	Admin gin.HandlerFunc
}

func (g Guards) staff() []gin.HandlerFunc { return guard(g.Staff) }
func (g Guards) admin() []gin.HandlerFunc { return guard(g.Admin) }

func guard(h gin.HandlerFunc) []gin.HandlerFunc {
	if h == nil {
		return nil
	}
	return []gin.HandlerFunc{h}
}

// with prepends guards to the handler.
func with(guards []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc{}, guards...), h)
}

// StockRoutes builds the routes of one category. Returns are only routed for
// returnable categories and safety data sheets for hazard-bearing ones.
func StockRoutes(h *handler.StockHandler, g Guards) *DomainGroup {
	desc := h.Descriptor()
	staff := g.staff()

	dg := NewDomainGroup(string(desc.Category), "/"+string(desc.Category))
	dg.POST("/register", with(staff, h.Register)...).
		GET("", h.List).
		GET("/search", h.Search).
		GET("/:id", h.Get).
		PUT("/:id", with(staff, h.Update)...).
		DELETE("/:id", with(staff, h.Delete)...)

	dg.POST("/restock", with(staff, h.Restock)...).
		GET("/restocks", h.ListRestocks).
		PATCH("/restock/:id", with(staff, h.UpdateRestock)...).
		DELETE("/restock/:id", with(staff, h.DeleteRestock)...)

	dg.POST("/register-log", with(staff, h.Issue)...).
		GET("/logs", h.ListLogs).
		PATCH("/logs/:id", with(staff, h.UpdateLog)...).
		DELETE("/logs/:id", with(staff, h.DeleteLog)...)

	if desc.IsReturnable {
		dg.PATCH("/return-log/:id", with(staff, h.Return)...)
	}
	if desc.RequiresHazardData {
		dg.POST("/:id/msds", with(staff, h.UploadMSDS)...).
			GET("/:id/msds", h.MSDSLink)
	}
	return dg
}

// RegisterAPI registers every labstock route on r.
func RegisterAPI(r *Router, h Handlers, g Guards) {
	for _, sh := range h.Stock {
		r.Register(StockRoutes(sh, g))
	}

	if h.Dashboard != nil {
		r.Register(NewDomainGroup("dashboard", "/dashboard").
			GET("", h.Dashboard.Summary).
			POST("/expiry-scan", with(g.admin(), h.Dashboard.Scan)...))
	}
	if h.Notifications != nil {
		r.Register(NewDomainGroup("notifications", "/notifications").
			GET("", h.Notifications.List).
			DELETE("", with(g.staff(), h.Notifications.DeleteMany)...).
			DELETE("/:id", with(g.staff(), h.Notifications.Delete)...))
	}
	if h.Inwards != nil {
		r.Register(NewDomainGroup("inwards", "/inwards").
			POST("", with(g.staff(), h.Inwards.Create)...).
			GET("", h.Inwards.List).
			GET("/:id", h.Inwards.Get))
	}
	if h.Requests != nil {
		r.Register(NewDomainGroup("requests", "/requests").
			POST("", h.Requests.Create).
			GET("", h.Requests.List).
			GET("/:id", h.Requests.Get).
			PATCH("/:id/review", with(g.admin(), h.Requests.Review)...))
	}
	if h.Health != nil {
		r.Register(NewDomainGroup("health", "/health").GET("", h.Health.Health))
	}
}
