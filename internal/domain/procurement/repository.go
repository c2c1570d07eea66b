package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
)

// InwardFilter narrows inward listings.
type InwardFilter struct {
	shared.Filter
	Category   stock.Category
	InwardCode string
	VendorName string
}

// InwardRepository persists inward receipts.
type InwardRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InwardReceipt, error)
	FindByCode(ctx context.Context, code string) (*InwardReceipt, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]InwardReceipt, error)
	FindAll(ctx context.Context, filter InwardFilter) ([]InwardReceipt, error)
	Count(ctx context.Context, filter InwardFilter) (int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, receipt *InwardReceipt) error
}

// LabRequestFilter narrows lab request listings.
type LabRequestFilter struct {
	shared.Filter
	Model  stock.RequestModel
	Status RequestStatus
}

// LabRequestRepository persists lab requests of every model.
type LabRequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LabRequest, error)
	FindAll(ctx context.Context, filter LabRequestFilter) ([]LabRequest, error)
	Count(ctx context.Context, filter LabRequestFilter) (int64, error)

	// FindByIDs returns the requests of one model with the given ids. Missing ids are skipped.
	FindByIDs(ctx context.Context, model stock.RequestModel, ids []uuid.UUID) ([]LabRequest, error)

	// CodesWithPrefix returns every request code starting with prefix.
	CodesWithPrefix(ctx context.Context, prefix string) ([]string, error)

	Save(ctx context.Context, request *LabRequest) error

	// UpdateStatus writes the status and review fields of a request whose stored status is
	// still from. A request that moved on in the meantime yields ErrConcurrencyConflict.
	UpdateStatus(ctx context.Context, request *LabRequest, from RequestStatus) error
}
