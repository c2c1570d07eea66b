package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
)

// ItemFilter narrows item listings. Text fields match case-insensitively as substrings.
type ItemFilter struct {
	shared.Filter
	Category      Category
	ItemCode      string
	ItemName      string
	Company       string
	Status        StockStatus
	Purpose       string
	Description   string
	UnitOfMeasure string
	SerialNumber  string
	ModelNumber   string
}

// RestockFilter narrows restock listings.
type RestockFilter struct {
	shared.Filter
	Category Category
	ItemCode string
	ItemName string
	Location string
	From     *time.Time
	To       *time.Time
}

// LogFilter narrows issue log listings. From/To bound the issue day inclusively.
type LogFilter struct {
	shared.Filter
	Category  Category
	ItemCode  string
	ItemName  string
	UserEmail string
	From      *time.Time
	To        *time.Time
}

// NotificationFilter narrows notification listings and bulk deletes.
type NotificationFilter struct {
	ItemID   *uuid.UUID
	Type     NotificationType
	Category Category
	Roles    []string
}

// IsEmpty reports whether the filter would match every notification.
func (f NotificationFilter) IsEmpty() bool {
	return f.ItemID == nil && f.Type == "" && f.Category == ""
}

// StockItemRepository persists stock items of every category.
type StockItemRepository interface {
	FindByID(ctx context.Context, category Category, id uuid.UUID) (*StockItem, error)
	FindByCode(ctx context.Context, category Category, itemCode string) (*StockItem, error)
	FindByName(ctx context.Context, category Category, itemName string) (*StockItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]StockItem, error)

	// FindAll returns one page of items matching the filter, ordered by item code.
	FindAll(ctx context.Context, filter ItemFilter) ([]StockItem, error)
	Count(ctx context.Context, filter ItemFilter) (int64, error)

	// ListByCategory returns every item of a category, unpaged.
	ListByCategory(ctx context.Context, category Category) ([]StockItem, error)

	// CodesWithPrefix returns the item codes of a category starting with prefix + "-".
	CodesWithPrefix(ctx context.Context, category Category, prefix string) ([]string, error)

	// Save inserts a new item.
	Save(ctx context.Context, item *StockItem) error

	// SaveWithLock updates an item if its stored version still equals item.Version,
	// then increments item.Version. A stale version yields ErrOptimisticLock.
	SaveWithLock(ctx context.Context, item *StockItem) error

	Delete(ctx context.Context, id uuid.UUID) error
}

// RestockRepository persists restock records.
type RestockRepository interface {
	FindByID(ctx context.Context, category Category, id uuid.UUID) (*RestockRecord, error)
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]RestockRecord, error)
	FindAll(ctx context.Context, filter RestockFilter) ([]RestockRecord, error)
	Count(ctx context.Context, filter RestockFilter) (int64, error)

	// FindWithExpiry returns every restock of the categories that carries an expiration date.
	FindWithExpiry(ctx context.Context, categories []Category) ([]RestockRecord, error)

	Save(ctx context.Context, record *RestockRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByItem(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error)
}

// IssueLogRepository persists issue logs.
type IssueLogRepository interface {
	FindByID(ctx context.Context, category Category, id uuid.UUID) (*IssueLog, error)

	// FindAll returns one page of logs matching the filter, newest issue first.
	FindAll(ctx context.Context, filter LogFilter) ([]IssueLog, error)
	Count(ctx context.Context, filter LogFilter) (int64, error)

	Save(ctx context.Context, log *IssueLog) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByItem(ctx context.Context, itemID uuid.UUID) error
}

// NotificationRepository persists notifications. (ItemID, Type) is unique.
type NotificationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindOne returns the notification for (itemID, type), or ErrNotFound.
	FindOne(ctx context.Context, itemID uuid.UUID, t NotificationType) (*Notification, error)

	// FindAll returns matching notifications, newest first. Roles are not applied here.
	FindAll(ctx context.Context, filter NotificationFilter) ([]Notification, error)

	// Create inserts the notification unless one already exists for (ItemID, Type).
	// It reports whether a row was inserted.
	Create(ctx context.Context, n *Notification) (bool, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByItemAndType removes the notification for (itemID, type) if present.
	DeleteByItemAndType(ctx context.Context, itemID uuid.UUID, t NotificationType) (int64, error)

	// DeleteMany removes every notification matching the filter.
	DeleteMany(ctx context.Context, filter NotificationFilter) (int64, error)

	// DeleteByItems removes every notification of the given item or restock ids.
	DeleteByItems(ctx context.Context, itemIDs []uuid.UUID) error
}
