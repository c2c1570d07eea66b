package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockItemRepository implements stock.StockItemRepository using GORM.
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository.
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

func (r *GormStockItemRepository) findOne(ctx context.Context, query string, args ...any) (*stock.StockItem, error) {
	var model models.StockItemModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByID finds an item of a category by its ID.
func (r *GormStockItemRepository) FindByID(ctx context.Context, category stock.Category, id uuid.UUID) (*stock.StockItem, error) {
	return r.findOne(ctx, "category = ? AND id = ?", string(category), id)
}

// FindByCode finds an item of a category by its item code.
func (r *GormStockItemRepository) FindByCode(ctx context.Context, category stock.Category, itemCode string) (*stock.StockItem, error) {
	return r.findOne(ctx, "category = ? AND item_code = ?", string(category), itemCode)
}

// FindByName finds an item of a category by its exact name, ignoring case.
func (r *GormStockItemRepository) FindByName(ctx context.Context, category stock.Category, itemName string) (*stock.StockItem, error) {
	return r.findOne(ctx, "category = ? AND LOWER(item_name) = LOWER(?)", string(category), itemName)
}

// FindByIDs finds items of any category by their IDs. Missing ids are skipped.
func (r *GormStockItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]stock.StockItem, error) {
	if len(ids) == 0 {
		return []stock.StockItem{}, nil
	}
	var rows []models.StockItemModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return stockItemsToDomain(rows), nil
}

func (r *GormStockItemRepository) filtered(ctx context.Context, filter stock.ItemFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.StockItemModel{})
	if filter.Category != "" {
		query = query.Where("category = ?", string(filter.Category))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	query = whereContains(query, "item_code", filter.ItemCode)
	query = whereContains(query, "item_name", filter.ItemName)
	query = whereContains(query, "company", filter.Company)
	query = whereContains(query, "purpose", filter.Purpose)
	query = whereContains(query, "description", filter.Description)
	query = whereContains(query, "unit_of_measure", filter.UnitOfMeasure)
	query = whereContains(query, "serial_number", filter.SerialNumber)
	query = whereContains(query, "model_number", filter.ModelNumber)
	if filter.Search != "" {
		like := "%" + escapeLike(strings.ToLower(strings.TrimSpace(filter.Search))) + "%"
		query = query.Where("(LOWER(item_code) LIKE ? ESCAPE '\\' OR LOWER(item_name) LIKE ? ESCAPE '\\')", like, like)
	}
	return query
}

// FindAll returns one page of items matching the filter, ordered by item code.
func (r *GormStockItemRepository) FindAll(ctx context.Context, filter stock.ItemFilter) ([]stock.StockItem, error) {
	var rows []models.StockItemModel
	query := orderBy(r.filtered(ctx, filter), filter.Filter, stockItemSort)
	if err := paginate(query, filter.Filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return stockItemsToDomain(rows), nil
}

// Count counts items matching the filter.
func (r *GormStockItemRepository) Count(ctx context.Context, filter stock.ItemFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByCategory returns every item of a category.
func (r *GormStockItemRepository) ListByCategory(ctx context.Context, category stock.Category) ([]stock.StockItem, error) {
	var rows []models.StockItemModel
	if err := r.db.WithContext(ctx).
		Where("category = ?", string(category)).
		Order("item_code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return stockItemsToDomain(rows), nil
}

// CodesWithPrefix returns the item codes of a category starting with prefix + "-".
func (r *GormStockItemRepository) CodesWithPrefix(ctx context.Context, category stock.Category, prefix string) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&models.StockItemModel{}).
		Where("category = ? AND item_code LIKE ? ESCAPE '\\'", string(category), escapeLike(prefix)+"-%").
		Pluck("item_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Save inserts a new item. A duplicate item code yields ErrAlreadyExists.
func (r *GormStockItemRepository) Save(ctx context.Context, item *stock.StockItem) error {
	return translateError(r.db.WithContext(ctx).Create(models.StockItemModelFromDomain(item)).Error)
}

// SaveWithLock updates the item only if the stored version still matches, then bumps the version.
func (r *GormStockItemRepository) SaveWithLock(ctx context.Context, item *stock.StockItem) error {
	model := models.StockItemModelFromDomain(item)
	result := r.db.WithContext(ctx).
		Model(&models.StockItemModel{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(map[string]any{
			"item_name":        model.ItemName,
			"company":          model.Company,
			"purpose":          model.Purpose,
			"description":      model.Description,
			"unit_of_measure":  model.UnitOfMeasure,
			"cas_no":           model.CasNo,
			"msds":             model.MSDS,
			"serial_number":    model.SerialNumber,
			"model_number":     model.ModelNumber,
			"author":           model.Author,
			"publisher":        model.Publisher,
			"edition":          model.Edition,
			"total_quantity":   model.TotalQuantity,
			"current_quantity": model.CurrentQuantity,
			"min_stock_level":  model.MinStockLevel,
			"status":           model.Status,
			"version":          item.Version + 1,
			"updated_at":       item.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrOptimisticLock
	}
	item.IncrementVersion()
	return nil
}

// Delete deletes an item.
func (r *GormStockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.StockItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func stockItemsToDomain(rows []models.StockItemModel) []stock.StockItem {
	items := make([]stock.StockItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items
}

var _ stock.StockItemRepository = (*GormStockItemRepository)(nil)
