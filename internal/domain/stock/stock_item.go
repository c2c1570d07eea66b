package stock

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockItem is the aggregate root of one tracked inventory unit in a category.
// Status always equals StatusOf(CurrentQuantity, MinStockLevel) after a mutation.
type StockItem struct {
	shared.BaseAggregateRoot
	Category      Category
	ItemCode      string
	ItemName      string
	Company       string
	Purpose       string
	Description   string
	UnitOfMeasure string

	// Chemicals and consumables.
	CasNo string
	MSDS  string

	// Equipments.
	SerialNumber string
	ModelNumber  string

	// Books.
	Author    string
	Publisher string
	Edition   string

	TotalQuantity   decimal.Decimal
	CurrentQuantity decimal.Decimal
	MinStockLevel   decimal.Decimal
	Status          StockStatus

	CreatedBy string
}

// ItemDetails holds the descriptive fields supplied at registration or update.
type ItemDetails struct {
	ItemName        string
	Company         string
	Purpose         string
	Description     string
	UnitOfMeasure   string
	CasNo           string
	MSDS            string
	SerialNumber    string
	ModelNumber     string
	Author          string
	Publisher       string
	Edition         string
	MinStockLevel   decimal.Decimal
	InitialQuantity decimal.Decimal
}

// ItemSnapshot is the part of an item the notification rules look at.
type ItemSnapshot struct {
	ItemID          uuid.UUID
	Category        Category
	ItemCode        string
	ItemName        string
	CurrentQuantity decimal.Decimal
	MinStockLevel   decimal.Decimal
	Status          StockStatus
}

// NewStockItem registers a new item. Quantities start at zero unless the category
// seeds them from the registration payload.
func NewStockItem(desc Descriptor, itemCode string, details ItemDetails, createdBy string) (*StockItem, error) {
	if strings.TrimSpace(itemCode) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_CODE", "Item code cannot be empty")
	}
	if err := validateDetails(desc, details); err != nil {
		return nil, err
	}

	quantity := decimal.Zero
	if desc.SeedsQuantityOnRegister {
		if details.InitialQuantity.IsNegative() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Total quantity cannot be negative")
		}
		quantity = details.InitialQuantity
	}

	item := &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Category:          desc.Category,
		ItemCode:          itemCode,
		TotalQuantity:     quantity,
		CurrentQuantity:   quantity,
		CreatedBy:         createdBy,
	}
	item.applyDetails(details)
	item.Status = StatusOf(item.CurrentQuantity, item.MinStockLevel)

	item.AddDomainEvent(NewStockItemRegisteredEvent(item))
	return item, nil
}

func validateDetails(desc Descriptor, d ItemDetails) error {
	if strings.TrimSpace(d.ItemName) == "" {
		return shared.NewDomainError("INVALID_ITEM_NAME", "Item name is required")
	}
	if strings.TrimSpace(d.UnitOfMeasure) == "" && desc.Category != CategoryBooks {
		return shared.NewDomainError("INVALID_UNIT", "Unit of measure is required")
	}
	if d.MinStockLevel.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_STOCK_LEVEL", "Minimum stock level cannot be negative")
	}
	if desc.RequiresHazardData && strings.TrimSpace(d.CasNo) == "" {
		return shared.NewDomainError("INVALID_CAS_NO", "CAS number is required for "+strings.ToLower(desc.Label))
	}
	return nil
}

func (i *StockItem) applyDetails(d ItemDetails) {
	i.ItemName = strings.TrimSpace(d.ItemName)
	i.Company = strings.TrimSpace(d.Company)
	i.Purpose = strings.TrimSpace(d.Purpose)
	i.Description = strings.TrimSpace(d.Description)
	i.UnitOfMeasure = strings.TrimSpace(d.UnitOfMeasure)
	i.CasNo = strings.TrimSpace(d.CasNo)
	if d.MSDS != "" {
		i.MSDS = strings.TrimSpace(d.MSDS)
	}
	i.SerialNumber = strings.TrimSpace(d.SerialNumber)
	i.ModelNumber = strings.TrimSpace(d.ModelNumber)
	i.Author = strings.TrimSpace(d.Author)
	i.Publisher = strings.TrimSpace(d.Publisher)
	i.Edition = strings.TrimSpace(d.Edition)
	i.MinStockLevel = d.MinStockLevel
}

// Snapshot captures the fields used by notification reconciliation.
func (i *StockItem) Snapshot() ItemSnapshot {
	return ItemSnapshot{
		ItemID:          i.ID,
		Category:        i.Category,
		ItemCode:        i.ItemCode,
		ItemName:        i.ItemName,
		CurrentQuantity: i.CurrentQuantity,
		MinStockLevel:   i.MinStockLevel,
		Status:          i.Status,
	}
}

// UpdateDetails replaces the descriptive fields. Quantities are not touched but the
// status is re-derived because the minimum stock level may have moved.
func (i *StockItem) UpdateDetails(desc Descriptor, details ItemDetails) error {
	if err := validateDetails(desc, details); err != nil {
		return err
	}
	i.applyDetails(details)
	i.recompute(ReasonItemUpdated, decimal.Zero)
	return nil
}

// AttachMSDS records the storage key of the item's safety data sheet.
func (i *StockItem) AttachMSDS(storageKey string) {
	i.MSDS = storageKey
	i.Touch()
}

// Issue takes quantity out of the current stock.
func (i *StockItem) Issue(quantity decimal.Decimal) error {
	if quantity.Sign() <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Issued quantity must be greater than zero")
	}
	if quantity.GreaterThan(i.CurrentQuantity) {
		return shared.ErrInsufficientStock
	}
	i.CurrentQuantity = i.CurrentQuantity.Sub(quantity)
	i.recompute(ReasonIssued, quantity.Neg())
	return nil
}

// AdjustIssued applies the difference between a log's new and old issued quantity.
func (i *StockItem) AdjustIssued(delta decimal.Decimal) error {
	next := i.CurrentQuantity.Sub(delta)
	if next.IsNegative() {
		return shared.ErrInsufficientStock
	}
	i.CurrentQuantity = next
	i.recompute(ReasonIssueEdited, delta.Neg())
	return nil
}

// ReverseIssue puts back the part of a deleted issue that had not been returned.
func (i *StockItem) ReverseIssue(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Reversed quantity cannot be negative")
	}
	i.CurrentQuantity = i.CurrentQuantity.Add(quantity)
	i.recompute(ReasonIssueDeleted, quantity)
	return nil
}

// ReturnIssued adds returned quantity back to the current stock.
// Lost or damaged quantity never comes back.
func (i *StockItem) ReturnIssued(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Returned quantity cannot be negative")
	}
	i.CurrentQuantity = i.CurrentQuantity.Add(quantity)
	i.recompute(ReasonReturned, quantity)
	return nil
}

// Receive adds a restocked quantity to both the total and current stock.
func (i *StockItem) Receive(quantity decimal.Decimal) error {
	if quantity.Sign() <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity purchased must be greater than zero")
	}
	i.TotalQuantity = i.TotalQuantity.Add(quantity)
	i.CurrentQuantity = i.CurrentQuantity.Add(quantity)
	i.recompute(ReasonRestocked, quantity)
	return nil
}

// AdjustReceived applies the difference of an edited restock to both quantities.
func (i *StockItem) AdjustReceived(delta decimal.Decimal) error {
	nextCurrent := i.CurrentQuantity.Add(delta)
	if nextCurrent.IsNegative() {
		return shared.NewDomainError(shared.CodeInsufficientStock, "Restock adjustment exceeds current stock.")
	}
	i.CurrentQuantity = nextCurrent
	i.TotalQuantity = decimal.Max(i.TotalQuantity.Add(delta), decimal.Zero)
	i.recompute(ReasonRestockEdited, delta)
	return nil
}

// ReverseReceipt removes a deleted restock from both quantities, flooring at zero.
func (i *StockItem) ReverseReceipt(quantity decimal.Decimal) {
	i.TotalQuantity = decimal.Max(i.TotalQuantity.Sub(quantity), decimal.Zero)
	i.CurrentQuantity = decimal.Max(i.CurrentQuantity.Sub(quantity), decimal.Zero)
	i.recompute(ReasonRestockDeleted, quantity.Neg())
}

func (i *StockItem) recompute(reason ChangeReason, delta decimal.Decimal) {
	previous := i.Status
	i.Status = StatusOf(i.CurrentQuantity, i.MinStockLevel)
	i.UpdatedAt = time.Now()
	i.AddDomainEvent(NewStockLevelChangedEvent(i, reason, delta, previous))
}
