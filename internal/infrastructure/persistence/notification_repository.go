package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository implements stock.NotificationRepository using GORM.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository.
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID finds a notification by its ID.
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Notification, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindOne finds the notification for an (item, type) pair.
func (r *GormNotificationRepository) FindOne(ctx context.Context, itemID uuid.UUID, t stock.NotificationType) (*stock.Notification, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND type = ?", itemID, string(t)).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormNotificationRepository) filtered(ctx context.Context, filter stock.NotificationFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.NotificationModel{})
	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.Category != "" {
		query = query.Where("category = ?", string(filter.Category))
	}
	return query
}

// FindAll returns matching notifications, newest first.
func (r *GormNotificationRepository) FindAll(ctx context.Context, filter stock.NotificationFilter) ([]stock.Notification, error) {
	var rows []models.NotificationModel
	if err := r.filtered(ctx, filter).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]stock.Notification, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts the notification with ON CONFLICT (item_id, type) DO NOTHING
// and reports whether a row was written.
func (r *GormNotificationRepository) Create(ctx context.Context, n *stock.Notification) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "type"}},
			DoNothing: true,
		}).
		Create(models.NotificationModelFromDomain(n))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete deletes a notification.
func (r *GormNotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.NotificationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByItemAndType deletes the notification for (itemID, type) if present.
func (r *GormNotificationRepository) DeleteByItemAndType(ctx context.Context, itemID uuid.UUID, t stock.NotificationType) (int64, error) {
	result := r.db.WithContext(ctx).
		Delete(&models.NotificationModel{}, "item_id = ? AND type = ?", itemID, string(t))
	return result.RowsAffected, result.Error
}

// DeleteMany deletes every notification matching the filter. An empty filter is rejected.
func (r *GormNotificationRepository) DeleteMany(ctx context.Context, filter stock.NotificationFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, shared.NewDomainError(shared.CodeInvalidInput, "At least one filter is required to delete notifications")
	}
	result := r.filtered(ctx, filter).Delete(&models.NotificationModel{})
	return result.RowsAffected, result.Error
}

// DeleteByItems deletes every notification of the given item or restock ids.
func (r *GormNotificationRepository) DeleteByItems(ctx context.Context, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&models.NotificationModel{}, "item_id IN ?", itemIDs).Error
}

var _ stock.NotificationRepository = (*GormNotificationRepository)(nil)
