package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appstock "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LevelRecorder receives the per-category low and out of stock counts after a scan.
type LevelRecorder interface {
	RecordStockLevels(ctx context.Context, category string, lowStock, outOfStock int64)
}

// ExpiryScanService raises near expiry and expired notifications for restocks and
// removes stock notifications that no longer describe their item.
type ExpiryScanService struct {
	items          stock.StockItemRepository
	restocks       stock.RestockRepository
	notifications  stock.NotificationRepository
	eventPublisher shared.EventPublisher
	recorder       LevelRecorder
	logger         *zap.Logger
	now            func() time.Time
}

// NewExpiryScanService creates a new ExpiryScanService.
func NewExpiryScanService(items stock.StockItemRepository, restocks stock.RestockRepository, notifications stock.NotificationRepository) *ExpiryScanService {
	return &ExpiryScanService{
		items:         items,
		restocks:      restocks,
		notifications: notifications,
		logger:        zap.NewNop(),
		now:           time.Now,
	}
}

// SetEventPublisher sets the publisher for notification created events.
func (s *ExpiryScanService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetRecorder sets the stock level recorder.
func (s *ExpiryScanService) SetRecorder(recorder LevelRecorder) {
	s.recorder = recorder
}

// SetLogger sets the logger.
func (s *ExpiryScanService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Scan runs one expiry pass followed by the stale notification repair.
func (s *ExpiryScanService) Scan(ctx context.Context) (*ScanResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "expiry_scan")
	defer span.End()

	result, err := s.scanExpiry(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	removed, err := s.PurgeStaleStockNotifications(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result.StaleRemoved = removed

	s.logger.Info("expiry scan finished",
		zap.Int("restocks_scanned", result.RestocksScanned),
		zap.Int("notifications_created", result.NotificationsCreated),
		zap.Int64("stale_notifications_removed", result.StaleRemoved),
	)
	telemetry.SetOK(span)
	return result, nil
}

func (s *ExpiryScanService) scanExpiry(ctx context.Context) (*ScanResult, error) {
	restocks, err := s.restocks.FindWithExpiry(ctx, stock.ExpiryCategories())
	if err != nil {
		return nil, fmt.Errorf("failed to load restocks: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(restocks))
	for _, r := range restocks {
		ids = append(ids, r.ItemID)
	}
	items, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	byID := make(map[uuid.UUID]*stock.StockItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	now := s.now()
	result := &ScanResult{}
	var created []*stock.Notification
	for i := range restocks {
		r := &restocks[i]
		item, ok := byID[r.ItemID]
		if !ok {
			s.logger.Warn("restock without item", zap.String("restock_id", r.ID.String()))
			continue
		}
		result.RestocksScanned++

		intents := stock.ReconcileExpiryNotifications(r, item.Snapshot(), now)
		inserted, err := appstock.ApplyNotificationIntents(ctx, s.notifications, intents)
		if err != nil {
			return nil, err
		}
		created = append(created, inserted...)
	}
	result.NotificationsCreated = len(created)

	if s.eventPublisher != nil && len(created) > 0 {
		events := make([]shared.DomainEvent, 0, len(created))
		for _, e := range appstock.NotificationEvents(created) {
			events = append(events, e)
		}
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Error("failed to publish expiry notifications", zap.Error(err))
		}
	}
	return result, nil
}

// PurgeStaleStockNotifications deletes out_of_stock rows of items that have stock and
// low_stock rows of items above their minimum. Mutations already keep these clean; the
// pass repairs rows written before that or by direct database edits.
func (s *ExpiryScanService) PurgeStaleStockNotifications(ctx context.Context) (int64, error) {
	var removed int64
	for _, c := range stock.AllCategories() {
		items, err := s.items.ListByCategory(ctx, c)
		if err != nil {
			return removed, fmt.Errorf("failed to list %s: %w", c, err)
		}

		var low, out int64
		for i := range items {
			snap := items[i].Snapshot()
			switch stock.StatusOf(snap.CurrentQuantity, snap.MinStockLevel) {
			case stock.StatusOutOfStock:
				out++
			case stock.StatusLowStock:
				low++
			}
			for _, intent := range stock.StaleStockNotificationIntents(snap) {
				n, err := s.notifications.DeleteByItemAndType(ctx, intent.ItemID, intent.Type)
				if err != nil {
					return removed, err
				}
				removed += n
			}
		}
		if s.recorder != nil {
			s.recorder.RecordStockLevels(ctx, string(c), low, out)
		}
	}
	return removed, nil
}
