package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// Register creates a new item with a generated item code.
// A code collision with a concurrent registration is retried once with a fresh code.
func (s *StockService) Register(ctx context.Context, req RegisterItemRequest, createdBy string) (*ItemResponse, error) {
	prefix, err := stock.ItemCodePrefix(req.ItemName)
	if err != nil {
		return nil, err
	}

	var item *stock.StockItem
	for attempt := 0; attempt < 2; attempt++ {
		codes, err := s.repos.Items.CodesWithPrefix(ctx, s.desc.Category, prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to read item codes: %w", err)
		}
		item, err = stock.NewStockItem(s.desc, stock.NextItemCode(prefix, codes), req.details(), createdBy)
		if err != nil {
			return nil, err
		}
		err = s.repos.Items.Save(ctx, item)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrAlreadyExists) || attempt == 1 {
			return nil, err
		}
		s.logger.Warn("item code collision, regenerating", zap.String("item_code", item.ItemCode))
	}

	s.logger.Info("item registered",
		zap.String("item_id", item.ID.String()),
		zap.String("item_code", item.ItemCode),
		zap.String("status", string(item.Status)),
	)
	s.publish(ctx, item, nil)

	resp := ToItemResponse(item)
	return &resp, nil
}

// Get returns one item.
func (s *StockService) Get(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.repos.Items.FindByID(ctx, s.desc.Category, id)
	if err != nil {
		return nil, s.itemNotFound(err)
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// List returns a page of items. Listing never writes.
func (s *StockService) List(ctx context.Context, filter ItemListFilter) ([]ItemResponse, int64, error) {
	domainFilter := stock.ItemFilter{
		Filter:        pageOf(filter.Page, filter.PageSize),
		Category:      s.desc.Category,
		ItemCode:      filter.ItemCode,
		ItemName:      filter.ItemName,
		Company:       filter.Company,
		Purpose:       filter.Purpose,
		Description:   filter.Description,
		UnitOfMeasure: filter.UnitOfMeasure,
	}
	if s.desc.HasMaintenance {
		domainFilter.SerialNumber = filter.SerialNumber
		domainFilter.ModelNumber = filter.ModelNumber
	}
	if filter.Status != "" {
		domainFilter.Status = stock.StockStatus(filter.Status)
	}

	items, err := s.repos.Items.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Items.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = ToItemResponse(&items[i])
	}
	return responses, total, nil
}

// Search returns id, code and name of every item matching the query, for pickers.
func (s *StockService) Search(ctx context.Context, query string) ([]ItemSearchResult, error) {
	items, err := s.repos.Items.ListByCategory(ctx, s.desc.Category)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	results := make([]ItemSearchResult, 0, len(items))
	for _, item := range items {
		if query != "" &&
			!strings.Contains(strings.ToLower(item.ItemCode), query) &&
			!strings.Contains(strings.ToLower(item.ItemName), query) {
			continue
		}
		results = append(results, ItemSearchResult{
			ID:       item.ID,
			ItemCode: item.ItemCode,
			ItemName: item.ItemName,
			Company:  item.Company,
		})
	}
	return results, nil
}

// Update replaces the descriptive fields of an item. A changed minimum stock level
// re-derives the status and its notifications.
func (s *StockService) Update(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	result, err := s.mutate(ctx, "update_item", id, func(ctx context.Context, _ TransactionalRepositories, item *stock.StockItem) error {
		return item.UpdateDetails(s.desc, req.details())
	})
	if err != nil {
		return nil, s.itemNotFound(err)
	}
	resp := ToItemResponse(result.item)
	return &resp, nil
}

// Delete removes an item together with its restocks, logs and notifications.
func (s *StockService) Delete(ctx context.Context, id uuid.UUID) error {
	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to lock item: %w", err)
	}
	defer unlock()

	var deleted *stock.StockItem
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.ItemRepo().FindByID(ctx, s.desc.Category, id)
		if err != nil {
			return err
		}
		restockIDs, err := repos.RestockRepo().DeleteByItem(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.LogRepo().DeleteByItem(ctx, id); err != nil {
			return err
		}
		if err := repos.NotificationRepo().DeleteByItems(ctx, append(restockIDs, id)); err != nil {
			return err
		}
		if err := repos.ItemRepo().Delete(ctx, id); err != nil {
			return err
		}
		deleted = item
		return nil
	})
	if err != nil {
		return s.itemNotFound(err)
	}

	s.logger.Info("item deleted", zap.String("item_id", id.String()), zap.String("item_code", deleted.ItemCode))
	deleted.ClearDomainEvents()
	deleted.AddDomainEvent(stock.NewStockItemDeletedEvent(deleted))
	s.publish(ctx, deleted, nil)
	return nil
}
