package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants.
const (
	AggregateTypeStockItem  = "StockItem"
	AggregateTypeLabRequest = "LabRequest"
)

// Event type constants.
const (
	EventTypeStockItemRegistered      = "StockItemRegistered"
	EventTypeStockItemDeleted         = "StockItemDeleted"
	EventTypeStockLevelChanged        = "StockLevelChanged"
	EventTypeStockNotificationCreated = "StockNotificationCreated"
)

// ChangeReason names the operation that moved a stock level.
type ChangeReason string

const (
	ReasonIssued         ChangeReason = "issued"
	ReasonIssueEdited    ChangeReason = "issue_edited"
	ReasonIssueDeleted   ChangeReason = "issue_deleted"
	ReasonReturned       ChangeReason = "returned"
	ReasonRestocked      ChangeReason = "restocked"
	ReasonRestockEdited  ChangeReason = "restock_edited"
	ReasonRestockDeleted ChangeReason = "restock_deleted"
	ReasonItemUpdated    ChangeReason = "item_updated"
)

// StockItemRegisteredEvent is raised when a new item is registered.
type StockItemRegisteredEvent struct {
	shared.BaseDomainEvent
	Category        Category        `json:"category"`
	ItemCode        string          `json:"item_code"`
	ItemName        string          `json:"item_name"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
}

// NewStockItemRegisteredEvent creates a new StockItemRegisteredEvent.
func NewStockItemRegisteredEvent(item *StockItem) *StockItemRegisteredEvent {
	return &StockItemRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockItemRegistered, AggregateTypeStockItem, item.ID),
		Category:        item.Category,
		ItemCode:        item.ItemCode,
		ItemName:        item.ItemName,
		CurrentQuantity: item.CurrentQuantity,
	}
}

// StockItemDeletedEvent is raised when an item and its history are removed.
type StockItemDeletedEvent struct {
	shared.BaseDomainEvent
	Category Category `json:"category"`
	ItemCode string   `json:"item_code"`
}

// NewStockItemDeletedEvent creates a new StockItemDeletedEvent.
func NewStockItemDeletedEvent(item *StockItem) *StockItemDeletedEvent {
	return &StockItemDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockItemDeleted, AggregateTypeStockItem, item.ID),
		Category:        item.Category,
		ItemCode:        item.ItemCode,
	}
}

// StockLevelChangedEvent is raised after every quantity-affecting mutation.
type StockLevelChangedEvent struct {
	shared.BaseDomainEvent
	Category        Category        `json:"category"`
	ItemCode        string          `json:"item_code"`
	ItemName        string          `json:"item_name"`
	Reason          ChangeReason    `json:"reason"`
	Delta           decimal.Decimal `json:"delta"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	MinStockLevel   decimal.Decimal `json:"min_stock_level"`
	PreviousStatus  StockStatus     `json:"previous_status"`
	Status          StockStatus     `json:"status"`
}

// NewStockLevelChangedEvent creates a new StockLevelChangedEvent.
func NewStockLevelChangedEvent(item *StockItem, reason ChangeReason, delta decimal.Decimal, previous StockStatus) *StockLevelChangedEvent {
	return &StockLevelChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLevelChanged, AggregateTypeStockItem, item.ID),
		Category:        item.Category,
		ItemCode:        item.ItemCode,
		ItemName:        item.ItemName,
		Reason:          reason,
		Delta:           delta,
		CurrentQuantity: item.CurrentQuantity,
		TotalQuantity:   item.TotalQuantity,
		MinStockLevel:   item.MinStockLevel,
		PreviousStatus:  previous,
		Status:          item.Status,
	}
}

// StatusChanged reports whether the mutation moved the item to another status.
func (e *StockLevelChangedEvent) StatusChanged() bool {
	return e.PreviousStatus != e.Status
}

// StockNotificationCreatedEvent is raised when a notification row is inserted.
type StockNotificationCreatedEvent struct {
	shared.BaseDomainEvent
	NotificationID uuid.UUID        `json:"notification_id"`
	Category       Category         `json:"category"`
	Type           NotificationType `json:"notification_type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	SendTo         []string         `json:"send_to"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

// NewStockNotificationCreatedEvent creates a new StockNotificationCreatedEvent.
func NewStockNotificationCreatedEvent(n *Notification) *StockNotificationCreatedEvent {
	aggregate := AggregateTypeStockItem
	if n.Type.IsRequestWorkflow() {
		aggregate = AggregateTypeLabRequest
	}
	return &StockNotificationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockNotificationCreated, aggregate, n.ItemID),
		NotificationID:  n.ID,
		Category:        n.Category,
		Type:            n.Type,
		Title:           n.Title,
		Message:         n.Message,
		SendTo:          append([]string(nil), n.SendTo...),
		ExpiresAt:       n.ExpiresAt,
	}
}
