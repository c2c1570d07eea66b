package handler

import (
	"github.com/gin-gonic/gin"
	appprocurement "github.com/labstock/backend/internal/application/procurement"
)

// InwardHandler serves inward receipts.
type InwardHandler struct {
	BaseHandler
	svc *appprocurement.InwardService
}

// NewInwardHandler creates a new InwardHandler.
func NewInwardHandler(svc *appprocurement.InwardService) *InwardHandler {
	return &InwardHandler{svc: svc}
}

// Create handles POST /inwards.
func (h *InwardHandler) Create(c *gin.Context) {
	var req appprocurement.CreateInwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	inward, err := h.svc.Create(c.Request.Context(), req, currentUser(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inward)
}

// Get handles GET /inwards/:id.
func (h *InwardHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	inward, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inward)
}

// List handles GET /inwards.
func (h *InwardHandler) List(c *gin.Context) {
	var filter appprocurement.InwardListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	inwards, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageParams(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, inwards, total, page, pageSize)
}

// LabRequestHandler serves requisitions, order requests and new indents.
type LabRequestHandler struct {
	BaseHandler
	svc *appprocurement.LabRequestService
}

// NewLabRequestHandler creates a new LabRequestHandler.
func NewLabRequestHandler(svc *appprocurement.LabRequestService) *LabRequestHandler {
	return &LabRequestHandler{svc: svc}
}

// Create handles POST /requests.
func (h *LabRequestHandler) Create(c *gin.Context) {
	var req appprocurement.CreateLabRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	request, err := h.svc.Create(c.Request.Context(), req, currentUser(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, request)
}

// Get handles GET /requests/:id.
func (h *LabRequestHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	request, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// List handles GET /requests.
func (h *LabRequestHandler) List(c *gin.Context) {
	var filter appprocurement.LabRequestListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	requests, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageParams(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, requests, total, page, pageSize)
}

// Review handles PATCH /requests/:id/review.
func (h *LabRequestHandler) Review(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req appprocurement.ReviewLabRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	request, err := h.svc.Review(c.Request.Context(), id, req, currentUser(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}
