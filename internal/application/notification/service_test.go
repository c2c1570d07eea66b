package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stock.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *stock.Notification) (bool, error) {
	args := m.Called(ctx, n)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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
	args := m.Called(ctx, itemIDs)
	return args.Error(0)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func lowStockNotification(sendTo ...string) stock.Notification {
	n := stock.NewStockNotification(stock.NotificationLowStock, stock.ItemSnapshot{
		ItemID:          uuid.New(),
		Category:        stock.CategoryChemicals,
		ItemName:        "Ethanol",
		CurrentQuantity: decimal.NewFromInt(1),
		MinStockLevel:   decimal.NewFromInt(5),
	})
	if len(sendTo) > 0 {
		n.SendTo = sendTo
	}
	return *n
}

func TestNotificationService_ListForRoles(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo)

	visible := lowStockNotification()
	hidden := lowStockNotification("auditor")
	repo.On("FindAll", ctx, stock.NotificationFilter{Type: stock.NotificationLowStock, Roles: []string{"lab-assistant"}}).
		Return([]stock.Notification{visible, hidden}, nil)

	list, err := svc.ListForRoles(ctx, []string{"lab-assistant"}, ListFilter{Type: "low_stock"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, visible.ID, list[0].ID)
	assert.Equal(t, "Low Stock Alert: Ethanol", list[0].Title)
	repo.AssertExpectations(t)
}

func TestNotificationService_ListForRoles_InvalidType(t *testing.T) {
	svc := NewNotificationService(new(MockNotificationRepository))

	_, err := svc.ListForRoles(context.Background(), []string{"admin"}, ListFilter{Type: "restocked"})
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_NOTIFICATION_TYPE", de.Code)
}

func TestNotificationService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		id := uuid.New()
		repo.On("Delete", ctx, id).Return(nil)

		require.NoError(t, NewNotificationService(repo).Delete(ctx, id))
		repo.AssertExpectations(t)
	})

	t.Run("missing returns not found", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		id := uuid.New()
		repo.On("Delete", ctx, id).Return(shared.ErrNotFound)

		err := NewNotificationService(repo).Delete(ctx, id)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", de.Code)
		assert.Equal(t, "Notification not found", de.Message)
	})

	t.Run("storage failure passes through", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		id := uuid.New()
		repo.On("Delete", ctx, id).Return(errors.New("connection reset"))

		err := NewNotificationService(repo).Delete(ctx, id)
		assert.EqualError(t, err, "connection reset")
	})
}

func TestNotificationService_DeleteMany(t *testing.T) {
	ctx := context.Background()

	t.Run("by type and category", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		repo.On("DeleteMany", ctx, stock.NotificationFilter{Type: stock.NotificationExpired, Category: stock.CategoryChemicals}).
			Return(int64(3), nil)

		n, err := NewNotificationService(repo).DeleteMany(ctx, DeleteManyRequest{Type: "expired", Category: "Chemicals"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("empty filter is rejected", func(t *testing.T) {
		repo := new(MockNotificationRepository)

		_, err := NewNotificationService(repo).DeleteMany(ctx, DeleteManyRequest{})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_INPUT", de.Code)
		repo.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	})
}

func TestNotificationService_Create(t *testing.T) {
	ctx := context.Background()
	itemID := uuid.New()
	req := CreateNotificationRequest{
		ItemID:   itemID,
		Category: "equipments",
		Type:     "out_of_stock",
		Title:    "Out of Stock Alert: Microscope",
		Message:  "The equipment Microscope is now out of stock.",
	}

	t.Run("inserts and publishes", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		publisher := &recordingPublisher{}
		svc := NewNotificationService(repo)
		svc.SetEventPublisher(publisher)
		repo.On("Create", ctx, mock.MatchedBy(func(n *stock.Notification) bool {
			return n.ItemID == itemID && n.Type == stock.NotificationOutOfStock
		})).Return(true, nil)

		resp, inserted, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Equal(t, []string{stock.RoleAdmin, stock.RoleLabAssistant}, resp.SendTo)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, stock.EventTypeStockNotificationCreated, publisher.events[0].EventType())
	})

	t.Run("existing row is returned instead", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		publisher := &recordingPublisher{}
		svc := NewNotificationService(repo)
		svc.SetEventPublisher(publisher)
		existing := lowStockNotification()
		repo.On("Create", ctx, mock.Anything).Return(false, nil)
		repo.On("FindOne", ctx, itemID, stock.NotificationOutOfStock).Return(&existing, nil)

		resp, inserted, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.Equal(t, existing.ID, resp.ID)
		assert.Empty(t, publisher.events)
	})
}

func TestNotificationService_FindOne(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepository)
	itemID := uuid.New()
	repo.On("FindOne", ctx, itemID, stock.NotificationNearExpiry).Return(nil, shared.ErrNotFound)

	_, err := NewNotificationService(repo).FindOne(ctx, itemID, "near_expiry")
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "Notification not found", de.Message)
}
