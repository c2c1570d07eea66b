package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	appstock "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/domain/stock"
)

// StockHandler serves the endpoints of one stock category.
type StockHandler struct {
	BaseHandler
	svc *appstock.StockService
}

// NewStockHandler creates a handler bound to the service of one category.
func NewStockHandler(svc *appstock.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// Descriptor returns the category the handler serves.
func (h *StockHandler) Descriptor() stock.Descriptor {
	return h.svc.Descriptor()
}

// ===================== Items =====================

// Register handles POST /{category}/register.
func (h *StockHandler) Register(c *gin.Context) {
	var req appstock.RegisterItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.svc.Register(c.Request.Context(), req, currentUser(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// List handles GET /{category}.
func (h *StockHandler) List(c *gin.Context) {
	var filter appstock.ItemListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	items, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageParams(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Search handles GET /{category}/search?q=.
func (h *StockHandler) Search(c *gin.Context) {
	results, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// Get handles GET /{category}/:id.
func (h *StockHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Update handles PUT /{category}/:id.
func (h *StockHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req appstock.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete handles DELETE /{category}/:id.
func (h *StockHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Item and associated restocks and logs deleted successfully", nil)
}

// ===================== Restocks =====================

// Restock handles POST /{category}/restock.
func (h *StockHandler) Restock(c *gin.Context) {
	var req appstock.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.svc.Restock(c.Request.Context(), req, currentUser(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListRestocks handles GET /{category}/restocks.
func (h *StockHandler) ListRestocks(c *gin.Context) {
	var filter appstock.RestockListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	restocks, total, err := h.svc.ListRestocks(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageParams(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, restocks, total, page, pageSize)
}

// UpdateRestock handles PATCH /{category}/restock/:id.
func (h *StockHandler) UpdateRestock(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req appstock.UpdateRestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.svc.UpdateRestock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DeleteRestock handles DELETE /{category}/restock/:id.
func (h *StockHandler) DeleteRestock(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.DeleteRestock(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ===================== Issue logs =====================

// Issue handles POST /{category}/register-log. The caller is recorded as the
// recipient when the body names nobody.
func (h *StockHandler) Issue(c *gin.Context) {
	var req appstock.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.UserEmail == "" {
		req.UserEmail = currentUser(c)
	}
	result, err := h.svc.Issue(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListLogs handles GET /{category}/logs.
func (h *StockHandler) ListLogs(c *gin.Context) {
	var filter appstock.LogListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	logs, total, err := h.svc.ListLogs(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageParams(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, logs, total, page, pageSize)
}

// UpdateLog handles PATCH /{category}/logs/:id.
func (h *StockHandler) UpdateLog(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req appstock.UpdateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.svc.UpdateLog(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DeleteLog handles DELETE /{category}/logs/:id.
func (h *StockHandler) DeleteLog(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.DeleteLog(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Return handles PATCH /{category}/return-log/:id.
func (h *StockHandler) Return(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req appstock.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.svc.Return(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ===================== Safety data sheets =====================

// UploadMSDS handles POST /{category}/:id/msds with a multipart "file" field.
func (h *StockHandler) UploadMSDS(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A file field is required")
		return
	}
	if header.Size > appstock.MaxMSDSSize {
		h.BadRequest(c, fmt.Sprintf("MSDS file must not exceed %d MB", appstock.MaxMSDSSize>>20))
		return
	}
	f, err := header.Open()
	if err != nil {
		h.HandleError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, appstock.MaxMSDSSize+1))
	if err != nil {
		h.HandleError(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	result, err := h.svc.UploadMSDS(c.Request.Context(), id, header.Filename, contentType, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// MSDSLink handles GET /{category}/:id/msds.
func (h *StockHandler) MSDSLink(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.MSDSLink(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
