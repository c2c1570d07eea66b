package stock

import (
	"context"
	"fmt"

	"github.com/labstock/backend/internal/domain/stock"
)

// ApplyNotificationIntents executes intents in order and returns the notifications
// that were actually inserted. Creates that hit an existing (item, type) row are skipped.
func ApplyNotificationIntents(ctx context.Context, repo stock.NotificationRepository, intents []stock.NotificationIntent) ([]*stock.Notification, error) {
	var created []*stock.Notification
	for _, intent := range intents {
		switch intent.Action {
		case stock.IntentCreate:
			inserted, err := repo.Create(ctx, intent.Notification)
			if err != nil {
				return nil, fmt.Errorf("failed to create %s notification: %w", intent.Type, err)
			}
			if inserted {
				created = append(created, intent.Notification)
			}
		case stock.IntentDelete:
			if _, err := repo.DeleteByItemAndType(ctx, intent.ItemID, intent.Type); err != nil {
				return nil, fmt.Errorf("failed to delete %s notification: %w", intent.Type, err)
			}
		}
	}
	return created, nil
}

// NotificationEvents wraps created notifications as domain events.
func NotificationEvents(created []*stock.Notification) []*stock.StockNotificationCreatedEvent {
	events := make([]*stock.StockNotificationCreatedEvent, 0, len(created))
	for _, n := range created {
		events = append(events, stock.NewStockNotificationCreatedEvent(n))
	}
	return events
}

func hasType(created []*stock.Notification, t stock.NotificationType) bool {
	for _, n := range created {
		if n.Type == t {
			return true
		}
	}
	return false
}
