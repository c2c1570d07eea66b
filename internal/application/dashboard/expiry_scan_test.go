package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	events []shared.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type levelCall struct {
	category string
	low, out int64
}

type captureRecorder struct {
	calls []levelCall
}

func (r *captureRecorder) RecordStockLevels(_ context.Context, category string, low, out int64) {
	r.calls = append(r.calls, levelCall{category, low, out})
}

func TestExpiryScanService_Scan(t *testing.T) {
	ctx := context.Background()
	items := new(MockStockItemRepository)
	restocks := new(MockRestockRepository)
	notifications := new(MockNotificationRepository)
	publisher := &capturePublisher{}
	recorder := &captureRecorder{}

	svc := NewExpiryScanService(items, restocks, notifications)
	svc.SetEventPublisher(publisher)
	svc.SetRecorder(recorder)
	svc.now = func() time.Time { return fixedNow }

	stocked := item(stock.CategoryChemicals, "Acetone", 8, 2)
	depleted := item(stock.CategoryChemicals, "Ethanol", 0, 2)
	near := restock(stocked.ID, stock.CategoryChemicals, fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 1))
	gone := restock(depleted.ID, stock.CategoryChemicals, fixedNow.AddDate(0, 0, -10), fixedNow.AddDate(0, 0, -5))
	orphan := restock(uuid.New(), stock.CategoryOthers, fixedNow.AddDate(0, 0, -10), fixedNow.AddDate(0, 0, -5))

	restocks.On("FindWithExpiry", ctx, stock.ExpiryCategories()).Return([]stock.RestockRecord{near, gone, orphan}, nil)
	items.On("FindByIDs", ctx, []uuid.UUID{stocked.ID, depleted.ID, orphan.ItemID}).Return([]stock.StockItem{stocked, depleted}, nil)

	// stocked restock in its alert window gets a near_expiry notification keyed by the restock
	notifications.On("Create", ctx, mock.MatchedBy(func(n *stock.Notification) bool {
		return n.ItemID == near.ID && n.Type == stock.NotificationNearExpiry && n.ExpiresAt.Equal(*near.ExpirationDate)
	})).Return(true, nil).Once()
	// depleted item loses both expiry notifications
	notifications.On("DeleteByItemAndType", ctx, gone.ID, stock.NotificationNearExpiry).Return(int64(0), nil).Once()
	notifications.On("DeleteByItemAndType", ctx, gone.ID, stock.NotificationExpired).Return(int64(1), nil).Once()

	expectCategories(items, map[stock.Category][]stock.StockItem{
		stock.CategoryChemicals: {stocked, depleted},
	})
	notifications.On("DeleteByItemAndType", ctx, stocked.ID, stock.NotificationOutOfStock).Return(int64(1), nil).Once()
	notifications.On("DeleteByItemAndType", ctx, stocked.ID, stock.NotificationLowStock).Return(int64(0), nil).Once()

	result, err := svc.Scan(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.RestocksScanned)
	assert.Equal(t, 1, result.NotificationsCreated)
	assert.Equal(t, int64(1), result.StaleRemoved)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, stock.EventTypeStockNotificationCreated, publisher.events[0].EventType())
	assert.Contains(t, recorder.calls, levelCall{"chemicals", 0, 1})
	notifications.AssertExpectations(t)
}

func TestExpiryScanService_SecondPassDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	items := new(MockStockItemRepository)
	restocks := new(MockRestockRepository)
	notifications := new(MockNotificationRepository)
	publisher := &capturePublisher{}

	svc := NewExpiryScanService(items, restocks, notifications)
	svc.SetEventPublisher(publisher)
	svc.now = func() time.Time { return fixedNow }

	stocked := item(stock.CategoryConsumables, "Gloves", 8, 2)
	near := restock(stocked.ID, stock.CategoryConsumables, fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 1))
	restocks.On("FindWithExpiry", ctx, stock.ExpiryCategories()).Return([]stock.RestockRecord{near}, nil)
	items.On("FindByIDs", ctx, []uuid.UUID{stocked.ID}).Return([]stock.StockItem{stocked}, nil)
	notifications.On("Create", ctx, mock.Anything).Return(false, nil)
	expectCategories(items, map[stock.Category][]stock.StockItem{})

	result, err := svc.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.NotificationsCreated)
	assert.Empty(t, publisher.events)
}
