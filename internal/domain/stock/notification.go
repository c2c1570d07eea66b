package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
)

// NotificationType identifies the condition a notification reports.
type NotificationType string

const (
	NotificationOutOfStock     NotificationType = "out_of_stock"
	NotificationLowStock       NotificationType = "low_stock"
	NotificationStockRecovered NotificationType = "stock_recovered"
	NotificationNearExpiry     NotificationType = "near_expiry"
	NotificationExpired        NotificationType = "expired"

	NotificationRequestApproved NotificationType = "request_approved"
	NotificationRequestRejected NotificationType = "request_rejected"
	NotificationRequestIssued   NotificationType = "request_issued"
)

// Roles that receive notifications.
const (
	RoleAdmin        = "admin"
	RoleLabAssistant = "lab-assistant"
	RoleFaculty      = "faculty"
)

// StockRecipients is the send_to list of every stock notification.
func StockRecipients() []string {
	return []string{RoleAdmin, RoleLabAssistant}
}

// ParseNotificationType validates a notification type name.
func ParseNotificationType(s string) (NotificationType, error) {
	t := NotificationType(s)
	switch t {
	case NotificationOutOfStock, NotificationLowStock, NotificationStockRecovered, NotificationNearExpiry, NotificationExpired,
		NotificationRequestApproved, NotificationRequestRejected, NotificationRequestIssued:
		return t, nil
	}
	return "", shared.NewDomainError("INVALID_NOTIFICATION_TYPE", "Unknown notification type: "+s)
}

// IsRequestWorkflow reports whether the type tracks a lab request rather than stock.
func (t NotificationType) IsRequestWorkflow() bool {
	switch t {
	case NotificationRequestApproved, NotificationRequestRejected, NotificationRequestIssued:
		return true
	}
	return false
}

// Notification is an alert record. At most one exists per (ItemID, Type).
// Expiry notifications use the restock record id as ItemID, request workflow
// notifications the lab request id.
type Notification struct {
	shared.BaseEntity
	ItemID    uuid.UUID
	Category  Category
	Type      NotificationType
	Title     string
	Message   string
	SendTo    []string
	ExpiresAt *time.Time
}

// NewStockNotification builds the notification for a stock level condition.
func NewStockNotification(t NotificationType, snap ItemSnapshot) *Notification {
	desc, _ := DescriptorFor(snap.Category)
	noun := desc.Noun
	if noun == "" {
		noun = "item"
	}

	n := &Notification{
		BaseEntity: shared.NewBaseEntity(),
		ItemID:     snap.ItemID,
		Category:   snap.Category,
		Type:       t,
		SendTo:     StockRecipients(),
	}
	switch t {
	case NotificationOutOfStock:
		n.Title = "Out of Stock Alert: " + snap.ItemName
		n.Message = fmt.Sprintf("The %s %s is now out of stock.", noun, snap.ItemName)
	case NotificationLowStock:
		n.Title = "Low Stock Alert: " + snap.ItemName
		n.Message = fmt.Sprintf("The stock for %s is below the minimum level.", snap.ItemName)
	case NotificationStockRecovered:
		n.Title = "Stock Recovery: " + snap.ItemName
		n.Message = fmt.Sprintf("The %s %s is now back in stock and no longer out of stock or low stock.", noun, snap.ItemName)
	}
	return n
}

// NewExpiryNotification builds the notification for a restock entering its alert window or expiring.
func NewExpiryNotification(t NotificationType, restock *RestockRecord, itemName string) *Notification {
	n := &Notification{
		BaseEntity: shared.NewBaseEntity(),
		ItemID:     restock.ID,
		Category:   restock.Category,
		Type:       t,
		SendTo:     StockRecipients(),
		ExpiresAt:  restock.ExpirationDate,
	}
	expires := ""
	if restock.ExpirationDate != nil {
		expires = restock.ExpirationDate.Format("2006-01-02")
	}
	switch t {
	case NotificationNearExpiry:
		n.Title = "Near Expiry Alert: " + itemName
		n.Message = fmt.Sprintf("The stock of %s received in this restock expires on %s.", itemName, expires)
	case NotificationExpired:
		n.Title = "Expired Alert: " + itemName
		n.Message = fmt.Sprintf("The stock of %s received in this restock expired on %s.", itemName, expires)
	}
	return n
}

// VisibleTo reports whether any of the roles is a recipient.
func (n *Notification) VisibleTo(roles []string) bool {
	for _, want := range n.SendTo {
		for _, have := range roles {
			if want == have {
				return true
			}
		}
	}
	return false
}

// IntentAction is what the caller should do with a notification row.
type IntentAction string

const (
	IntentCreate IntentAction = "create"
	IntentDelete IntentAction = "delete"
)

// NotificationIntent is one create-if-absent or delete-if-present instruction.
type NotificationIntent struct {
	Action       IntentAction
	ItemID       uuid.UUID
	Type         NotificationType
	Notification *Notification
}

func createIntent(n *Notification) NotificationIntent {
	return NotificationIntent{Action: IntentCreate, ItemID: n.ItemID, Type: n.Type, Notification: n}
}

func deleteIntent(itemID uuid.UUID, t NotificationType) NotificationIntent {
	return NotificationIntent{Action: IntentDelete, ItemID: itemID, Type: t}
}

// ReconcileStockNotifications returns the notification changes implied by moving an item
// from before to after.
//
//   - out of stock: create out_of_stock, delete stock_recovered (low_stock is left alone)
//   - low stock: create low_stock, delete stock_recovered
//   - in stock: create stock_recovered only when the persisted status before the
//     mutation was OutOfStock or LowStock
//
// The stale out_of_stock/low_stock rows a recovery leaves behind are removed here as well,
// so listings never have to write.
func ReconcileStockNotifications(before, after ItemSnapshot) []NotificationIntent {
	var intents []NotificationIntent
	status := StatusOf(after.CurrentQuantity, after.MinStockLevel)

	switch status {
	case StatusOutOfStock:
		intents = append(intents,
			createIntent(NewStockNotification(NotificationOutOfStock, after)),
			deleteIntent(after.ItemID, NotificationStockRecovered),
		)
	case StatusLowStock:
		intents = append(intents,
			createIntent(NewStockNotification(NotificationLowStock, after)),
			deleteIntent(after.ItemID, NotificationStockRecovered),
		)
	case StatusInStock:
		if before.Status.NeedsAttention() {
			intents = append(intents, createIntent(NewStockNotification(NotificationStockRecovered, after)))
		}
	}

	return append(intents, StaleStockNotificationIntents(after)...)
}

// StaleStockNotificationIntents returns deletions for stock notifications that no longer
// describe the item: out_of_stock once current > 0, low_stock once current > min.
func StaleStockNotificationIntents(snap ItemSnapshot) []NotificationIntent {
	var intents []NotificationIntent
	if snap.CurrentQuantity.Sign() > 0 {
		intents = append(intents, deleteIntent(snap.ItemID, NotificationOutOfStock))
	}
	if snap.CurrentQuantity.GreaterThan(snap.MinStockLevel) {
		intents = append(intents, deleteIntent(snap.ItemID, NotificationLowStock))
	}
	return intents
}

// ReconcileExpiryNotifications returns the expiry notification changes for one restock.
// Depleted items lose both expiry notifications instead of being alerted on.
func ReconcileExpiryNotifications(restock *RestockRecord, item ItemSnapshot, now time.Time) []NotificationIntent {
	if item.CurrentQuantity.Sign() <= 0 {
		return []NotificationIntent{
			deleteIntent(restock.ID, NotificationNearExpiry),
			deleteIntent(restock.ID, NotificationExpired),
		}
	}

	switch restock.ExpiryState(now) {
	case ExpiryNear:
		return []NotificationIntent{createIntent(NewExpiryNotification(NotificationNearExpiry, restock, item.ItemName))}
	case ExpiryExpired:
		return []NotificationIntent{createIntent(NewExpiryNotification(NotificationExpired, restock, item.ItemName))}
	}
	return nil
}
