package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	appstock "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DashboardService computes the read-only rollup across categories. It re-derives every
// predicate from stored quantities and dates, never from the persisted status field.
type DashboardService struct {
	items    stock.StockItemRepository
	restocks stock.RestockRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(items stock.StockItemRepository, restocks stock.RestockRepository) *DashboardService {
	return &DashboardService{
		items:    items,
		restocks: restocks,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
}

// SetLogger sets the logger.
func (s *DashboardService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Summary returns counts, quantities and the detail lists of every category.
func (s *DashboardService) Summary(ctx context.Context) (*Response, error) {
	resp := &Response{
		TotalQuantity:   decimal.Zero,
		LowStockItems:   []appstock.ItemResponse{},
		OutOfStockItems: []appstock.ItemResponse{},
		NearExpiryItems: []ExpiryEntry{},
		ExpiredItems:    []ExpiryEntry{},
	}
	names := make(map[uuid.UUID]stock.StockItem)

	for _, c := range stock.AllCategories() {
		items, err := s.items.ListByCategory(ctx, c)
		if err != nil {
			return nil, err
		}
		summary := CategorySummary{
			Category:      c,
			Label:         stock.MustDescriptor(c).Label,
			TotalQuantity: decimal.Zero,
		}
		for i := range items {
			item := &items[i]
			names[item.ID] = *item
			summary.TotalCount++
			summary.TotalQuantity = summary.TotalQuantity.Add(item.CurrentQuantity)
			switch {
			case stock.IsZeroStock(item.CurrentQuantity):
				summary.ZeroStockCount++
				resp.OutOfStockItems = append(resp.OutOfStockItems, appstock.ToItemResponse(item))
			case stock.IsDashboardLowStock(item.CurrentQuantity, item.MinStockLevel):
				summary.LowStockCount++
				resp.LowStockItems = append(resp.LowStockItems, appstock.ToItemResponse(item))
			}
			if stock.IsInStock(item.CurrentQuantity, item.MinStockLevel) {
				summary.InStockCount++
			}
		}

		resp.Categories = append(resp.Categories, summary)
		resp.TotalCount += summary.TotalCount
		resp.TotalQuantity = resp.TotalQuantity.Add(summary.TotalQuantity)
		resp.LowStockCount += summary.LowStockCount
		resp.ZeroStockCount += summary.ZeroStockCount
		resp.InStockCount += summary.InStockCount
	}

	restocks, err := s.restocks.FindWithExpiry(ctx, stock.ExpiryCategories())
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range restocks {
		r := &restocks[i]
		entry := ExpiryEntry{Category: r.Category, Restock: appstock.ToRestockResponse(r)}
		if item, ok := names[r.ItemID]; ok {
			entry.Restock.ItemCode = item.ItemCode
			entry.Restock.ItemName = item.ItemName
		}
		switch r.ExpiryState(now) {
		case stock.ExpiryNear:
			resp.NearExpiryCount++
			resp.NearExpiryItems = append(resp.NearExpiryItems, entry)
		case stock.ExpiryExpired:
			resp.ExpiredCount++
			resp.ExpiredItems = append(resp.ExpiredItems, entry)
		}
	}
	return resp, nil
}
