package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appnotification "github.com/labstock/backend/internal/application/notification"
	"github.com/labstock/backend/internal/interfaces/http/dto"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
)

// NotificationHandler serves the notification inbox.
type NotificationHandler struct {
	BaseHandler
	svc *appnotification.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(svc *appnotification.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List handles GET /notifications. Only notifications addressed to one of the
// caller's roles are returned.
func (h *NotificationHandler) List(c *gin.Context) {
	var filter appnotification.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	itemID, ok := h.optionalItemID(c)
	if !ok {
		return
	}
	filter.ItemID = itemID

	notifications, err := h.svc.ListForRoles(c.Request.Context(), middleware.GetUserRoles(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, notifications)
}

// Delete handles DELETE /notifications/:id.
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Notification deleted successfully", nil)
}

// DeleteMany handles DELETE /notifications?item_id=&notification_type=&category=.
func (h *NotificationHandler) DeleteMany(c *gin.Context) {
	var req appnotification.DeleteManyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	itemID, ok := h.optionalItemID(c)
	if !ok {
		return
	}
	req.ItemID = itemID

	deleted, err := h.svc.DeleteMany(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Notifications deleted successfully", gin.H{"deleted": deleted})
}

func (h *NotificationHandler) optionalItemID(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("item_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid item_id format")
		return nil, false
	}
	return &id, true
}
