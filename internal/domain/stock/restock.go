package stock

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RestockRecord is a purchase receipt line that increased an item's stock.
type RestockRecord struct {
	shared.BaseEntity
	ItemID              uuid.UUID
	Category            Category
	InwardID            uuid.UUID
	QuantityPurchased   decimal.Decimal
	ExpirationDate      *time.Time
	ExpirationAlertDate *time.Time
	Location            string
	MaintenanceDate     *time.Time
	MaintenanceDetails  string
	CreatedBy           string
}

// RestockDetails holds the optional attributes of a restock.
type RestockDetails struct {
	ExpirationDate      *time.Time
	ExpirationAlertDate *time.Time
	Location            string
	MaintenanceDate     *time.Time
	MaintenanceDetails  string
}

// NewRestockRecord creates a restock line for an item received through an inward receipt.
func NewRestockRecord(desc Descriptor, itemID, inwardID uuid.UUID, quantity decimal.Decimal, details RestockDetails, createdBy string) (*RestockRecord, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if inwardID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INWARD", "Inward ID cannot be empty")
	}
	if quantity.Sign() <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity purchased must be greater than zero")
	}

	r := &RestockRecord{
		BaseEntity:        shared.NewBaseEntity(),
		ItemID:            itemID,
		Category:          desc.Category,
		InwardID:          inwardID,
		QuantityPurchased: quantity,
		CreatedBy:         createdBy,
	}
	if err := r.applyDetails(desc, details); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RestockRecord) applyDetails(desc Descriptor, d RestockDetails) error {
	if !desc.HasExpiry && (d.ExpirationDate != nil || d.ExpirationAlertDate != nil) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Expiration dates are not tracked for "+strings.ToLower(desc.Label))
	}
	if !desc.HasMaintenance && (d.MaintenanceDate != nil || d.MaintenanceDetails != "") {
		return shared.NewDomainError(shared.CodeInvalidInput, "Maintenance details are not tracked for "+strings.ToLower(desc.Label))
	}

	r.ExpirationDate = d.ExpirationDate
	r.ExpirationAlertDate = d.ExpirationAlertDate
	if r.ExpirationDate != nil && r.ExpirationAlertDate == nil {
		alert := r.ExpirationDate.Add(-DefaultExpirationAlertLead)
		r.ExpirationAlertDate = &alert
	}
	if r.ExpirationDate != nil && r.ExpirationAlertDate.After(*r.ExpirationDate) {
		return shared.NewDomainError("INVALID_EXPIRATION_ALERT", "Expiration alert date cannot be after the expiration date")
	}
	r.Location = strings.TrimSpace(d.Location)
	r.MaintenanceDate = d.MaintenanceDate
	r.MaintenanceDetails = strings.TrimSpace(d.MaintenanceDetails)
	return nil
}

// Update changes the attributes and quantity of the record, returning the quantity delta
// the parent item must absorb.
func (r *RestockRecord) Update(desc Descriptor, quantity decimal.Decimal, details RestockDetails) (decimal.Decimal, error) {
	if quantity.Sign() <= 0 {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Quantity purchased must be greater than zero")
	}
	if err := r.applyDetails(desc, details); err != nil {
		return decimal.Zero, err
	}
	delta := quantity.Sub(r.QuantityPurchased)
	r.QuantityPurchased = quantity
	r.Touch()
	return delta, nil
}

// ReassignInward points the record at another inward receipt.
func (r *RestockRecord) ReassignInward(inwardID uuid.UUID) {
	if inwardID != uuid.Nil {
		r.InwardID = inwardID
	}
}

// ExpiryState classifies the record at the given instant.
func (r *RestockRecord) ExpiryState(now time.Time) ExpiryState {
	return ClassifyExpiry(r.ExpirationAlertDate, r.ExpirationDate, now)
}
