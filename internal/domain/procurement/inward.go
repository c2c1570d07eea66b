package procurement

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// InwardReceipt records goods received from a vendor. Restocks reference it.
type InwardReceipt struct {
	shared.BaseEntity
	InwardCode    string
	Category      stock.Category
	ItemID        uuid.UUID
	Description   string
	Grade         string
	CasNo         string
	Quantity      decimal.Decimal
	Unit          string
	VendorName    string
	InvoiceNumber string
	CreatedBy     string
}

// InwardDetails holds the descriptive fields of a receipt.
type InwardDetails struct {
	Description   string
	Grade         string
	CasNo         string
	Unit          string
	VendorName    string
	InvoiceNumber string
}

// NewInwardReceipt creates a receipt for a registered item.
func NewInwardReceipt(code string, category stock.Category, itemID uuid.UUID, quantity decimal.Decimal, details InwardDetails, createdBy string) (*InwardReceipt, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INWARD_CODE", "Inward code is required")
	}
	if _, err := stock.DescriptorFor(category); err != nil {
		return nil, err
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if quantity.Sign() <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if strings.TrimSpace(details.Unit) == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit is required")
	}
	if strings.TrimSpace(details.VendorName) == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor is required")
	}

	return &InwardReceipt{
		BaseEntity:    shared.NewBaseEntity(),
		InwardCode:    code,
		Category:      category,
		ItemID:        itemID,
		Description:   strings.TrimSpace(details.Description),
		Grade:         strings.TrimSpace(details.Grade),
		CasNo:         strings.TrimSpace(details.CasNo),
		Quantity:      quantity,
		Unit:          strings.TrimSpace(details.Unit),
		VendorName:    strings.TrimSpace(details.VendorName),
		InvoiceNumber: strings.TrimSpace(details.InvoiceNumber),
		CreatedBy:     createdBy,
	}, nil
}
