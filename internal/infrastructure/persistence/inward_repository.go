package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInwardRepository implements procurement.InwardRepository using GORM.
type GormInwardRepository struct {
	db *gorm.DB
}

// NewGormInwardRepository creates a new GormInwardRepository.
func NewGormInwardRepository(db *gorm.DB) *GormInwardRepository {
	return &GormInwardRepository{db: db}
}

func (r *GormInwardRepository) findOne(ctx context.Context, query string, args ...any) (*procurement.InwardReceipt, error) {
	var model models.InwardModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByID finds an inward receipt by its ID.
func (r *GormInwardRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.InwardReceipt, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByCode finds an inward receipt by its code.
func (r *GormInwardRepository) FindByCode(ctx context.Context, code string) (*procurement.InwardReceipt, error) {
	return r.findOne(ctx, "inward_code = ?", code)
}

// FindByIDs finds inward receipts by their IDs.
func (r *GormInwardRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]procurement.InwardReceipt, error) {
	if len(ids) == 0 {
		return []procurement.InwardReceipt{}, nil
	}
	var rows []models.InwardModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return inwardsToDomain(rows), nil
}

func (r *GormInwardRepository) filtered(ctx context.Context, filter procurement.InwardFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.InwardModel{})
	if filter.Category != "" {
		query = query.Where("category = ?", string(filter.Category))
	}
	query = whereContains(query, "inward_code", filter.InwardCode)
	return whereContains(query, "vendor_name", filter.VendorName)
}

// FindAll returns one page of inward receipts, newest first.
func (r *GormInwardRepository) FindAll(ctx context.Context, filter procurement.InwardFilter) ([]procurement.InwardReceipt, error) {
	var rows []models.InwardModel
	query := orderBy(r.filtered(ctx, filter), filter.Filter, inwardSort)
	if err := paginate(query, filter.Filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return inwardsToDomain(rows), nil
}

// Count counts inward receipts matching the filter.
func (r *GormInwardRepository) Count(ctx context.Context, filter procurement.InwardFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks whether an inward code is taken.
func (r *GormInwardRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InwardModel{}).
		Where("inward_code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts an inward receipt. A duplicate code yields ErrAlreadyExists.
func (r *GormInwardRepository) Save(ctx context.Context, receipt *procurement.InwardReceipt) error {
	return translateError(r.db.WithContext(ctx).Create(models.InwardModelFromDomain(receipt)).Error)
}

func inwardsToDomain(rows []models.InwardModel) []procurement.InwardReceipt {
	out := make([]procurement.InwardReceipt, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ procurement.InwardRepository = (*GormInwardRepository)(nil)
