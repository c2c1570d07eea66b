package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLabRequestRepository implements procurement.LabRequestRepository using GORM.
type GormLabRequestRepository struct {
	db *gorm.DB
}

// NewGormLabRequestRepository creates a new GormLabRequestRepository.
func NewGormLabRequestRepository(db *gorm.DB) *GormLabRequestRepository {
	return &GormLabRequestRepository{db: db}
}

// FindByID finds a lab request by its ID.
func (r *GormLabRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.LabRequest, error) {
	var model models.LabRequestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormLabRequestRepository) filtered(ctx context.Context, filter procurement.LabRequestFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.LabRequestModel{})
	if filter.Model != stock.RequestModelNone {
		query = query.Where("model = ?", string(filter.Model))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	return whereContains(query, "code", filter.Search)
}

// FindAll returns one page of lab requests, newest first.
func (r *GormLabRequestRepository) FindAll(ctx context.Context, filter procurement.LabRequestFilter) ([]procurement.LabRequest, error) {
	var rows []models.LabRequestModel
	query := orderBy(r.filtered(ctx, filter), filter.Filter, labRequestSort)
	if err := paginate(query, filter.Filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]procurement.LabRequest, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts lab requests matching the filter.
func (r *GormLabRequestRepository) Count(ctx context.Context, filter procurement.LabRequestFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByIDs returns the requests of one model with the given ids.
func (r *GormLabRequestRepository) FindByIDs(ctx context.Context, model stock.RequestModel, ids []uuid.UUID) ([]procurement.LabRequest, error) {
	if len(ids) == 0 {
		return []procurement.LabRequest{}, nil
	}
	var rows []models.LabRequestModel
	if err := r.db.WithContext(ctx).
		Where("model = ? AND id IN ?", string(model), ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]procurement.LabRequest, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// CodesWithPrefix returns every request code starting with prefix.
func (r *GormLabRequestRepository) CodesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&models.LabRequestModel{}).
		Where("code LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Save inserts a lab request. A duplicate code yields ErrAlreadyExists.
func (r *GormLabRequestRepository) Save(ctx context.Context, request *procurement.LabRequest) error {
	return translateError(r.db.WithContext(ctx).Create(models.LabRequestModelFromDomain(request)).Error)
}

// UpdateStatus writes the status and review fields only while the stored status is still from.
func (r *GormLabRequestRepository) UpdateStatus(ctx context.Context, request *procurement.LabRequest, from procurement.RequestStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.LabRequestModel{}).
		Where("id = ? AND status = ?", request.ID, string(from)).
		Updates(map[string]any{
			"status":      string(request.Status),
			"remark":      request.Remark,
			"reviewed_by": request.ReviewedBy,
			"reviewed_at": request.ReviewedAt,
			"updated_at":  request.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("Request " + request.Code + " was changed by another user, reload and try again")
	}
	return nil
}

var _ procurement.LabRequestRepository = (*GormLabRequestRepository)(nil)
