package stock

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
)

func (s *StockService) restockDetails(expiration, alert, location, maintenanceDate, maintenanceDetails string) (stock.RestockDetails, error) {
	var details stock.RestockDetails
	var err error
	if details.ExpirationDate, err = parseOptionalDate(expiration, "Invalid expiration date."); err != nil {
		return details, err
	}
	if details.ExpirationAlertDate, err = parseOptionalDate(alert, "Invalid expiration alert date."); err != nil {
		return details, err
	}
	if details.MaintenanceDate, err = parseOptionalDate(maintenanceDate, "Invalid maintenance date."); err != nil {
		return details, err
	}
	details.Location = location
	details.MaintenanceDetails = maintenanceDetails
	return details, nil
}

// resolveItem finds the restocked item by id, then code, then name.
func (s *StockService) resolveItem(ctx context.Context, req RestockRequest) (*stock.StockItem, error) {
	var item *stock.StockItem
	var err error
	switch {
	case req.ItemID != nil && *req.ItemID != uuid.Nil:
		item, err = s.repos.Items.FindByID(ctx, s.desc.Category, *req.ItemID)
	case strings.TrimSpace(req.ItemCode) != "":
		item, err = s.repos.Items.FindByCode(ctx, s.desc.Category, strings.TrimSpace(req.ItemCode))
	case strings.TrimSpace(req.ItemName) != "":
		item, err = s.repos.Items.FindByName(ctx, s.desc.Category, strings.TrimSpace(req.ItemName))
	default:
		return nil, shared.NewDomainError("INVALID_ITEM", "Item id, item code or item name is required")
	}
	if err != nil {
		return nil, s.itemNotFound(err)
	}
	return item, nil
}

func (s *StockService) resolveInward(ctx context.Context, id *uuid.UUID, code string) (uuid.UUID, string, error) {
	switch {
	case id != nil && *id != uuid.Nil:
		inward, err := s.repos.Inwards.FindByID(ctx, *id)
		if err != nil {
			return uuid.Nil, "", notFound(err, "Inward record not found")
		}
		return inward.ID, inward.InwardCode, nil
	case strings.TrimSpace(code) != "":
		inward, err := s.repos.Inwards.FindByCode(ctx, strings.TrimSpace(code))
		if err != nil {
			return uuid.Nil, "", notFound(err, "Inward record not found")
		}
		return inward.ID, inward.InwardCode, nil
	}
	return uuid.Nil, "", shared.NewDomainError("INVALID_INWARD", "Inward record is required")
}

// Restock records a purchase and adds it to the item's total and current quantity.
func (s *StockService) Restock(ctx context.Context, req RestockRequest, createdBy string) (*MutationResponse, error) {
	if req.QuantityPurchased.Sign() <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity purchased must be greater than zero")
	}
	details, err := s.restockDetails(req.ExpirationDate, req.ExpirationAlertDate, req.Location, req.MaintenanceDate, req.MaintenanceDetails)
	if err != nil {
		return nil, err
	}
	inwardID, inwardCode, err := s.resolveInward(ctx, req.InwardID, req.InwardCode)
	if err != nil {
		return nil, err
	}
	target, err := s.resolveItem(ctx, req)
	if err != nil {
		return nil, err
	}

	var record *stock.RestockRecord
	result, err := s.mutate(ctx, "restock", target.ID, func(ctx context.Context, repos TransactionalRepositories, item *stock.StockItem) error {
		r, err := stock.NewRestockRecord(s.desc, item.ID, inwardID, req.QuantityPurchased, details, createdBy)
		if err != nil {
			return err
		}
		record = r
		if err := repos.RestockRepo().Save(ctx, record); err != nil {
			return err
		}
		return item.Receive(record.QuantityPurchased)
	})
	if err != nil {
		return nil, s.itemNotFound(err)
	}

	restock := ToRestockResponse(record)
	restock.ItemCode = result.item.ItemCode
	restock.ItemName = result.item.ItemName
	restock.InwardCode = inwardCode
	return &MutationResponse{
		Message:                       s.desc.Singular() + " restocked successfully",
		Item:                          ToItemResponse(result.item),
		Restock:                       &restock,
		StockRecoveryNotificationSent: result.recoverySent(),
	}, nil
}

// UpdateRestock edits a restock record and applies the quantity difference to the item.
func (s *StockService) UpdateRestock(ctx context.Context, id uuid.UUID, req UpdateRestockRequest) (*MutationResponse, error) {
	existing, err := s.repos.Restocks.FindByID(ctx, s.desc.Category, id)
	if err != nil {
		return nil, notFound(err, "Restock record not found")
	}
	details, err := s.restockDetails(req.ExpirationDate, req.ExpirationAlertDate, req.Location, req.MaintenanceDate, req.MaintenanceDetails)
	if err != nil {
		return nil, err
	}
	var inwardID uuid.UUID
	if strings.TrimSpace(req.InwardCode) != "" {
		if inwardID, _, err = s.resolveInward(ctx, nil, req.InwardCode); err != nil {
			return nil, err
		}
	}

	var record *stock.RestockRecord
	result, err := s.mutate(ctx, "update_restock", existing.ItemID, func(ctx context.Context, repos TransactionalRepositories, item *stock.StockItem) error {
		r, err := repos.RestockRepo().FindByID(ctx, s.desc.Category, id)
		if err != nil {
			return notFound(err, "Restock record not found")
		}
		record = r
		quantity := req.QuantityPurchased
		if quantity.Sign() <= 0 {
			quantity = record.QuantityPurchased
		}
		if details.Location == "" {
			details.Location = record.Location
		}
		if details.ExpirationDate == nil {
			details.ExpirationDate = record.ExpirationDate
			if details.ExpirationAlertDate == nil {
				details.ExpirationAlertDate = record.ExpirationAlertDate
			}
		}
		if details.MaintenanceDate == nil {
			details.MaintenanceDate = record.MaintenanceDate
		}
		if details.MaintenanceDetails == "" {
			details.MaintenanceDetails = record.MaintenanceDetails
		}

		previousExpiry := record.ExpirationDate
		delta, err := record.Update(s.desc, quantity, details)
		if err != nil {
			return err
		}
		if !sameDate(previousExpiry, record.ExpirationDate) {
			// the next expiry pass re-evaluates the record
			if err := repos.NotificationRepo().DeleteByItems(ctx, []uuid.UUID{record.ID}); err != nil {
				return err
			}
		}
		record.ReassignInward(inwardID)
		if err := repos.RestockRepo().Save(ctx, record); err != nil {
			return err
		}
		if delta.IsZero() {
			return nil
		}
		return item.AdjustReceived(delta)
	})
	if err != nil {
		return nil, s.itemNotFound(err)
	}

	restock := ToRestockResponse(record)
	restock.ItemCode = result.item.ItemCode
	restock.ItemName = result.item.ItemName
	return &MutationResponse{
		Message:                       "Restock record updated successfully",
		Item:                          ToItemResponse(result.item),
		Restock:                       &restock,
		StockRecoveryNotificationSent: result.recoverySent(),
	}, nil
}

// DeleteRestock removes a restock record, takes its quantity back out of the item
// and drops the record's expiry notifications.
func (s *StockService) DeleteRestock(ctx context.Context, id uuid.UUID) (*MutationResponse, error) {
	existing, err := s.repos.Restocks.FindByID(ctx, s.desc.Category, id)
	if err != nil {
		return nil, notFound(err, "Restock record not found")
	}

	result, err := s.mutate(ctx, "delete_restock", existing.ItemID, func(ctx context.Context, repos TransactionalRepositories, item *stock.StockItem) error {
		record, err := repos.RestockRepo().FindByID(ctx, s.desc.Category, id)
		if err != nil {
			return notFound(err, "Restock record not found")
		}
		if err := repos.RestockRepo().Delete(ctx, record.ID); err != nil {
			return err
		}
		if err := repos.NotificationRepo().DeleteByItems(ctx, []uuid.UUID{record.ID}); err != nil {
			return err
		}
		item.ReverseReceipt(record.QuantityPurchased)
		return nil
	})
	if err != nil {
		return nil, s.itemNotFound(err)
	}

	return &MutationResponse{
		Message:                       "Restock record deleted successfully",
		Item:                          ToItemResponse(result.item),
		StockRecoveryNotificationSent: result.recoverySent(),
	}, nil
}

// ListRestocks returns a page of restock records decorated with item and inward codes.
func (s *StockService) ListRestocks(ctx context.Context, filter RestockListFilter) ([]RestockResponse, int64, error) {
	from, to, err := dayRange(filter.From, filter.To)
	if err != nil {
		return nil, 0, err
	}
	domainFilter := stock.RestockFilter{
		Filter:   pageOf(filter.Page, filter.PageSize),
		Category: s.desc.Category,
		ItemCode: filter.ItemCode,
		ItemName: filter.ItemName,
		Location: filter.Location,
		From:     from,
		To:       to,
	}

	records, err := s.repos.Restocks.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Restocks.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	itemIDs := make([]uuid.UUID, 0, len(records))
	inwardIDs := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		itemIDs = append(itemIDs, r.ItemID)
		inwardIDs = append(inwardIDs, r.InwardID)
	}
	items, err := s.itemsByID(ctx, itemIDs)
	if err != nil {
		return nil, 0, err
	}
	inwards, err := s.repos.Inwards.FindByIDs(ctx, inwardIDs)
	if err != nil {
		return nil, 0, err
	}
	inwardCodes := make(map[uuid.UUID]string, len(inwards))
	for _, in := range inwards {
		inwardCodes[in.ID] = in.InwardCode
	}

	responses := make([]RestockResponse, len(records))
	for i := range records {
		responses[i] = ToRestockResponse(&records[i])
		if item, ok := items[records[i].ItemID]; ok {
			responses[i].ItemCode = item.ItemCode
			responses[i].ItemName = item.ItemName
		}
		responses[i].InwardCode = inwardCodes[records[i].InwardID]
	}
	return responses, total, nil
}

func (s *StockService) itemsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]stock.StockItem, error) {
	items, err := s.repos.Items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]stock.StockItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID, nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
