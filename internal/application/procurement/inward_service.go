package procurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// InwardService manages inward receipts.
type InwardService struct {
	repo   procurement.InwardRepository
	items  stock.StockItemRepository
	logger *zap.Logger
}

// NewInwardService creates a new InwardService.
func NewInwardService(repo procurement.InwardRepository, items stock.StockItemRepository) *InwardService {
	return &InwardService{repo: repo, items: items, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (s *InwardService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Create records a receipt for an item of the given class. Inward codes are unique.
func (s *InwardService) Create(ctx context.Context, req CreateInwardRequest, createdBy string) (*InwardResponse, error) {
	category, err := stock.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	desc := stock.MustDescriptor(category)
	if _, err := s.items.FindByID(ctx, category, req.ItemID); err != nil {
		return nil, notFound(err, desc.Singular()+" not found")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.InwardCode)
	if err != nil {
		return nil, fmt.Errorf("failed to check inward code: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Inward code already exists")
	}

	receipt, err := procurement.NewInwardReceipt(req.InwardCode, category, req.ItemID, req.Quantity, procurement.InwardDetails{
		Description:   req.Description,
		Grade:         req.Grade,
		CasNo:         req.CasNo,
		Unit:          req.Unit,
		VendorName:    req.VendorName,
		InvoiceNumber: req.InvoiceNumber,
	}, createdBy)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, receipt); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Inward code already exists")
		}
		return nil, err
	}

	s.logger.Info("inward receipt recorded",
		zap.String("inward_id", receipt.ID.String()),
		zap.String("inward_code", receipt.InwardCode),
		zap.String("category", string(category)),
		zap.String("quantity", receipt.Quantity.String()),
	)
	resp := ToInwardResponse(receipt)
	return &resp, nil
}

// Get returns one receipt.
func (s *InwardService) Get(ctx context.Context, id uuid.UUID) (*InwardResponse, error) {
	receipt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Inward record not found")
	}
	resp := ToInwardResponse(receipt)
	return &resp, nil
}

// List returns a page of receipts and the total count.
func (s *InwardService) List(ctx context.Context, filter InwardListFilter) ([]InwardResponse, int64, error) {
	domainFilter := procurement.InwardFilter{
		Filter:     pageOf(filter.Page, filter.PageSize),
		InwardCode: filter.InwardCode,
		VendorName: filter.VendorName,
	}
	if filter.Category != "" {
		category, err := stock.ParseCategory(filter.Category)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Category = category
	}

	receipts, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]InwardResponse, len(receipts))
	for i := range receipts {
		out[i] = ToInwardResponse(&receipts[i])
	}
	return out, total, nil
}

func notFound(err error, message string) error {
	var de *shared.DomainError
	if errors.As(err, &de) && de == shared.ErrNotFound {
		return shared.NewDomainError(shared.CodeNotFound, message)
	}
	return err
}

func pageOf(page, pageSize int) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	return f
}
