package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/stretchr/testify/mock"
)

// MockStockItemRepository is a mock implementation of stock.StockItemRepository.
type MockStockItemRepository struct {
	mock.Mock
}

func (m *MockStockItemRepository) FindByID(ctx context.Context, c stock.Category, id uuid.UUID) (*stock.StockItem, error) {
	args := m.Called(ctx, c, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByCode(ctx context.Context, c stock.Category, code string) (*stock.StockItem, error) {
	args := m.Called(ctx, c, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByName(ctx context.Context, c stock.Category, name string) (*stock.StockItem, error) {
	args := m.Called(ctx, c, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]stock.StockItem, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]stock.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindAll(ctx context.Context, filter stock.ItemFilter) ([]stock.StockItem, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]stock.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) Count(ctx context.Context, filter stock.ItemFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockItemRepository) ListByCategory(ctx context.Context, c stock.Category) ([]stock.StockItem, error) {
	args := m.Called(ctx, c)
	return args.Get(0).([]stock.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) CodesWithPrefix(ctx context.Context, c stock.Category, prefix string) ([]string, error) {
	args := m.Called(ctx, c, prefix)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStockItemRepository) Save(ctx context.Context, item *stock.StockItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockStockItemRepository) SaveWithLock(ctx context.Context, item *stock.StockItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockStockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockRestockRepository is a mock implementation of stock.RestockRepository.
type MockRestockRepository struct {
	mock.Mock
}

func (m *MockRestockRepository) FindByID(ctx context.Context, c stock.Category, id uuid.UUID) (*stock.RestockRecord, error) {
	args := m.Called(ctx, c, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.RestockRecord), args.Error(1)
}

func (m *MockRestockRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]stock.RestockRecord, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).([]stock.RestockRecord), args.Error(1)
}

func (m *MockRestockRepository) FindAll(ctx context.Context, filter stock.RestockFilter) ([]stock.RestockRecord, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]stock.RestockRecord), args.Error(1)
}

func (m *MockRestockRepository) Count(ctx context.Context, filter stock.RestockFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRestockRepository) FindWithExpiry(ctx context.Context, categories []stock.Category) ([]stock.RestockRecord, error) {
	args := m.Called(ctx, categories)
	return args.Get(0).([]stock.RestockRecord), args.Error(1)
}

func (m *MockRestockRepository) Save(ctx context.Context, r *stock.RestockRecord) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRestockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRestockRepository) DeleteByItem(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockNotificationRepository is a mock implementation of stock.NotificationRepository.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindOne(ctx context.Context, itemID uuid.UUID, t stock.NotificationType) (*stock.Notification, error) {
	args := m.Called(ctx, itemID, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindAll(ctx context.Context, filter stock.NotificationFilter) ([]stock.Notification, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]stock.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *stock.Notification) (bool, error) {
	args := m.Called(ctx, n)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockNotificationRepository) DeleteByItemAndType(ctx context.Context, itemID uuid.UUID, t stock.NotificationType) (int64, error) {
	args := m.Called(ctx, itemID, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) DeleteMany(ctx context.Context, filter stock.NotificationFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) DeleteByItems(ctx context.Context, itemIDs []uuid.UUID) error {
	return m.Called(ctx, itemIDs).Error(0)
}
