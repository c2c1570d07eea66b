package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormIssueLogRepository implements stock.IssueLogRepository using GORM.
type GormIssueLogRepository struct {
	db *gorm.DB
}

// NewGormIssueLogRepository creates a new GormIssueLogRepository.
func NewGormIssueLogRepository(db *gorm.DB) *GormIssueLogRepository {
	return &GormIssueLogRepository{db: db}
}

// FindByID finds an issue log of a category by its ID.
func (r *GormIssueLogRepository) FindByID(ctx context.Context, category stock.Category, id uuid.UUID) (*stock.IssueLog, error) {
	var model models.IssueLogModel
	if err := r.db.WithContext(ctx).
		Where("category = ? AND id = ?", string(category), id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormIssueLogRepository) filtered(ctx context.Context, filter stock.LogFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.IssueLogModel{})
	if filter.ItemCode != "" || filter.ItemName != "" {
		query = query.Joins("JOIN stock_items ON stock_items.id = issue_logs.item_id")
		query = whereContains(query, "stock_items.item_code", filter.ItemCode)
		query = whereContains(query, "stock_items.item_name", filter.ItemName)
	}
	if filter.Category != "" {
		query = query.Where("issue_logs.category = ?", string(filter.Category))
	}
	query = whereContains(query, "issue_logs.user_email", filter.UserEmail)
	if filter.From != nil {
		query = query.Where("issue_logs.date_issued >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("issue_logs.date_issued <= ?", *filter.To)
	}
	return query
}

// FindAll returns one page of logs matching the filter, newest issue first.
func (r *GormIssueLogRepository) FindAll(ctx context.Context, filter stock.LogFilter) ([]stock.IssueLog, error) {
	var rows []models.IssueLogModel
	query := orderBy(r.filtered(ctx, filter), filter.Filter, issueLogSort)
	if err := paginate(query, filter.Filter).Select("issue_logs.*").Find(&rows).Error; err != nil {
		return nil, err
	}
	logs := make([]stock.IssueLog, len(rows))
	for i := range rows {
		logs[i] = *rows[i].ToDomain()
	}
	return logs, nil
}

// Count counts logs matching the filter.
func (r *GormIssueLogRepository) Count(ctx context.Context, filter stock.LogFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a log.
func (r *GormIssueLogRepository) Save(ctx context.Context, log *stock.IssueLog) error {
	return translateError(r.db.WithContext(ctx).Save(models.IssueLogModelFromDomain(log)).Error)
}

// Delete deletes a log.
func (r *GormIssueLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.IssueLogModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByItem deletes every log of an item.
func (r *GormIssueLogRepository) DeleteByItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.IssueLogModel{}, "item_id = ?", itemID).Error
}

var _ stock.IssueLogRepository = (*GormIssueLogRepository)(nil)
