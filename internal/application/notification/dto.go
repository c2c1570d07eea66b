package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/stock"
)

// NotificationResponse represents a notification in API responses.
type NotificationResponse struct {
	ID        uuid.UUID              `json:"id"`
	ItemID    uuid.UUID              `json:"item_id"`
	Category  stock.Category         `json:"category"`
	Type      stock.NotificationType `json:"notification_type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	SendTo    []string               `json:"send_to"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// ToNotificationResponse converts a domain notification to a response.
func ToNotificationResponse(n *stock.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		ItemID:    n.ItemID,
		Category:  n.Category,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		SendTo:    n.SendTo,
		ExpiresAt: n.ExpiresAt,
		CreatedAt: n.CreatedAt,
	}
}

// CreateNotificationRequest creates a notification directly.
type CreateNotificationRequest struct {
	ItemID    uuid.UUID  `json:"item_id" binding:"required"`
	Category  string     `json:"category" binding:"required"`
	Type      string     `json:"notification_type" binding:"required"`
	Title     string     `json:"title" binding:"required,max=200"`
	Message   string     `json:"message" binding:"required,max=2000"`
	SendTo    []string   `json:"send_to"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// ListFilter represents the query parameters of a notification listing.
// ItemID is parsed by the caller; form binding does not decode UUIDs.
type ListFilter struct {
	ItemID   *uuid.UUID `form:"-"`
	Type     string     `form:"notification_type"`
	Category string     `form:"category"`
}

// DeleteManyRequest selects the notifications removed by a bulk delete.
type DeleteManyRequest struct {
	ItemID   *uuid.UUID `json:"item_id" form:"-"`
	Type     string     `json:"notification_type" form:"notification_type"`
	Category string     `json:"category" form:"category"`
}
