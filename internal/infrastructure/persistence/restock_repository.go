package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRestockRepository implements stock.RestockRepository using GORM.
type GormRestockRepository struct {
	db *gorm.DB
}

// NewGormRestockRepository creates a new GormRestockRepository.
func NewGormRestockRepository(db *gorm.DB) *GormRestockRepository {
	return &GormRestockRepository{db: db}
}

// FindByID finds a restock of a category by its ID.
func (r *GormRestockRepository) FindByID(ctx context.Context, category stock.Category, id uuid.UUID) (*stock.RestockRecord, error) {
	var model models.RestockModel
	if err := r.db.WithContext(ctx).
		Where("category = ? AND id = ?", string(category), id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByItem returns every restock of an item, oldest first.
func (r *GormRestockRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]stock.RestockRecord, error) {
	var rows []models.RestockModel
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return restocksToDomain(rows), nil
}

func (r *GormRestockRepository) filtered(ctx context.Context, filter stock.RestockFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.RestockModel{})
	if filter.ItemCode != "" || filter.ItemName != "" {
		query = query.Joins("JOIN stock_items ON stock_items.id = restocks.item_id")
		query = whereContains(query, "stock_items.item_code", filter.ItemCode)
		query = whereContains(query, "stock_items.item_name", filter.ItemName)
	}
	if filter.Category != "" {
		query = query.Where("restocks.category = ?", string(filter.Category))
	}
	query = whereContains(query, "restocks.location", filter.Location)
	if filter.From != nil {
		query = query.Where("restocks.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("restocks.created_at <= ?", *filter.To)
	}
	return query
}

// FindAll returns one page of restocks matching the filter, newest first.
func (r *GormRestockRepository) FindAll(ctx context.Context, filter stock.RestockFilter) ([]stock.RestockRecord, error) {
	var rows []models.RestockModel
	query := orderBy(r.filtered(ctx, filter), filter.Filter, restockSort)
	if err := paginate(query, filter.Filter).Select("restocks.*").Find(&rows).Error; err != nil {
		return nil, err
	}
	return restocksToDomain(rows), nil
}

// Count counts restocks matching the filter.
func (r *GormRestockRepository) Count(ctx context.Context, filter stock.RestockFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindWithExpiry returns every restock of the categories that carries an expiration date.
func (r *GormRestockRepository) FindWithExpiry(ctx context.Context, categories []stock.Category) ([]stock.RestockRecord, error) {
	if len(categories) == 0 {
		return []stock.RestockRecord{}, nil
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	var rows []models.RestockModel
	if err := r.db.WithContext(ctx).
		Where("category IN ? AND expiration_date IS NOT NULL", names).
		Order("expiration_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return restocksToDomain(rows), nil
}

// Save creates or updates a restock.
func (r *GormRestockRepository) Save(ctx context.Context, record *stock.RestockRecord) error {
	return translateError(r.db.WithContext(ctx).Save(models.RestockModelFromDomain(record)).Error)
}

// Delete deletes a restock.
func (r *GormRestockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.RestockModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByItem deletes every restock of an item and returns the deleted ids.
func (r *GormRestockRepository) DeleteByItem(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.RestockModel{}).Where("item_id = ?", itemID).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if err := db.Where("id IN ?", ids).Delete(&models.RestockModel{}).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func restocksToDomain(rows []models.RestockModel) []stock.RestockRecord {
	out := make([]stock.RestockRecord, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ stock.RestockRepository = (*GormRestockRepository)(nil)
