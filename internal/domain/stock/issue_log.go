package stock

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RequestModel names the kind of request an issue was made against.
type RequestModel string

const (
	RequestModelNone         RequestModel = ""
	RequestModelRequisition  RequestModel = "Requisition"
	RequestModelOrderRequest RequestModel = "OrderRequest"
	RequestModelNewIndent    RequestModel = "NewIndent"
)

// ParseRequestModel accepts the canonical names and the snake_case aliases used by clients.
func ParseRequestModel(s string) (RequestModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return RequestModelNone, nil
	case "requisition":
		return RequestModelRequisition, nil
	case "orderrequest", "order_request":
		return RequestModelOrderRequest, nil
	case "newindent", "new_indent":
		return RequestModelNewIndent, nil
	}
	return "", shared.NewDomainError("INVALID_REQUEST_MODEL", "Unknown request model: "+s)
}

// IssueLog records stock handed out against a request.
type IssueLog struct {
	shared.BaseEntity
	ItemID                uuid.UUID
	Category              Category
	RequestModel          RequestModel
	RequestID             *uuid.UUID
	IssuedQuantity        decimal.Decimal
	ReturnedQuantity      decimal.Decimal
	LostOrDamagedQuantity decimal.Decimal
	DateIssued            time.Time
	DateReturned          *time.Time
	UserEmail             string
}

// NewIssueLog validates and creates an issue log entry.
func NewIssueLog(desc Descriptor, itemID uuid.UUID, quantity decimal.Decimal, model RequestModel, requestID *uuid.UUID, dateIssued time.Time, userEmail string) (*IssueLog, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if quantity.Sign() <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Issued quantity must be greater than zero")
	}
	if dateIssued.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Invalid date issued.")
	}
	if model != RequestModelNone && (requestID == nil || *requestID == uuid.Nil) {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Request ID is required when a request model is given")
	}
	return &IssueLog{
		BaseEntity:            shared.NewBaseEntity(),
		ItemID:                itemID,
		Category:              desc.Category,
		RequestModel:          model,
		RequestID:             requestID,
		IssuedQuantity:        quantity,
		ReturnedQuantity:      decimal.Zero,
		LostOrDamagedQuantity: decimal.Zero,
		DateIssued:            dateIssued,
		UserEmail:             strings.TrimSpace(userEmail),
	}, nil
}

// IsReturned reports whether a return has been recorded.
func (l *IssueLog) IsReturned() bool {
	return l.DateReturned != nil
}

// ValidateReturn checks a return split against the issued quantity.
// Both checks are kept even though the first implies the second.
func (l *IssueLog) ValidateReturn(returned, lost decimal.Decimal) error {
	if returned.IsNegative() || lost.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Returned and lost/damaged quantities cannot be negative")
	}
	if !returned.Add(lost).Equal(l.IssuedQuantity) {
		return shared.NewDomainError(shared.CodeQuantityMismatch, "The sum of returned and lost/damaged quantities must equal the issued quantity")
	}
	if l.IssuedQuantity.LessThan(returned) {
		return shared.NewDomainError(shared.CodeQuantityMismatch, "Returned quantity cannot be greater than the issued quantity")
	}
	return nil
}

// RecordReturn stores the return split. It returns the quantity that goes back to stock,
// which is the change relative to any earlier return of the same log.
func (l *IssueLog) RecordReturn(returned, lost decimal.Decimal, dateReturned time.Time) (decimal.Decimal, error) {
	if err := l.ValidateReturn(returned, lost); err != nil {
		return decimal.Zero, err
	}
	if dateReturned.IsZero() {
		return decimal.Zero, shared.NewDomainError("INVALID_DATE", "Invalid date returned.")
	}
	delta := returned.Sub(l.ReturnedQuantity)
	l.ReturnedQuantity = returned
	l.LostOrDamagedQuantity = lost
	l.DateReturned = &dateReturned
	l.Touch()
	return delta, nil
}

// ChangeIssuedQuantity edits the issued quantity and returns new minus old.
func (l *IssueLog) ChangeIssuedQuantity(quantity decimal.Decimal) (decimal.Decimal, error) {
	if quantity.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Issued quantity must be a non-negative number")
	}
	if l.IsReturned() {
		return decimal.Zero, shared.NewDomainError("INVALID_STATE", "Returned log entries cannot change their issued quantity")
	}
	delta := quantity.Sub(l.IssuedQuantity)
	l.IssuedQuantity = quantity
	l.Touch()
	return delta, nil
}

// UpdateMetadata changes the issuing user and date.
func (l *IssueLog) UpdateMetadata(userEmail string, dateIssued *time.Time) {
	if strings.TrimSpace(userEmail) != "" {
		l.UserEmail = strings.TrimSpace(userEmail)
	}
	if dateIssued != nil && !dateIssued.IsZero() {
		l.DateIssued = *dateIssued
	}
	l.Touch()
}

// OutstandingQuantity is the part of the issue that has not come back to stock.
func (l *IssueLog) OutstandingQuantity() decimal.Decimal {
	return l.IssuedQuantity.Sub(l.ReturnedQuantity)
}
