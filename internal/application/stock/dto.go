package stock

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// RegisterItemRequest registers a new item in a category.
type RegisterItemRequest struct {
	ItemName      string          `json:"item_name" binding:"required,min=1,max=200"`
	Company       string          `json:"company" binding:"max=200"`
	Purpose       string          `json:"purpose" binding:"max=500"`
	Description   string          `json:"description" binding:"max=2000"`
	UnitOfMeasure string          `json:"unit_of_measure" binding:"max=50"`
	CasNo         string          `json:"cas_no" binding:"max=50"`
	SerialNumber  string          `json:"serial_number" binding:"max=100"`
	ModelNumber   string          `json:"model_number" binding:"max=100"`
	Author        string          `json:"author" binding:"max=200"`
	Publisher     string          `json:"publisher" binding:"max=200"`
	Edition       string          `json:"edition" binding:"max=50"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

func (r RegisterItemRequest) details() stock.ItemDetails {
	return stock.ItemDetails{
		ItemName:        r.ItemName,
		Company:         r.Company,
		Purpose:         r.Purpose,
		Description:     r.Description,
		UnitOfMeasure:   r.UnitOfMeasure,
		CasNo:           r.CasNo,
		SerialNumber:    r.SerialNumber,
		ModelNumber:     r.ModelNumber,
		Author:          r.Author,
		Publisher:       r.Publisher,
		Edition:         r.Edition,
		MinStockLevel:   r.MinStockLevel,
		InitialQuantity: r.TotalQuantity,
	}
}

// UpdateItemRequest replaces the descriptive fields of an item. Quantities are not editable here.
type UpdateItemRequest struct {
	ItemName      string          `json:"item_name" binding:"required,min=1,max=200"`
	Company       string          `json:"company" binding:"max=200"`
	Purpose       string          `json:"purpose" binding:"max=500"`
	Description   string          `json:"description" binding:"max=2000"`
	UnitOfMeasure string          `json:"unit_of_measure" binding:"max=50"`
	CasNo         string          `json:"cas_no" binding:"max=50"`
	SerialNumber  string          `json:"serial_number" binding:"max=100"`
	ModelNumber   string          `json:"model_number" binding:"max=100"`
	Author        string          `json:"author" binding:"max=200"`
	Publisher     string          `json:"publisher" binding:"max=200"`
	Edition       string          `json:"edition" binding:"max=50"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
}

func (r UpdateItemRequest) details() stock.ItemDetails {
	return stock.ItemDetails{
		ItemName:      r.ItemName,
		Company:       r.Company,
		Purpose:       r.Purpose,
		Description:   r.Description,
		UnitOfMeasure: r.UnitOfMeasure,
		CasNo:         r.CasNo,
		SerialNumber:  r.SerialNumber,
		ModelNumber:   r.ModelNumber,
		Author:        r.Author,
		Publisher:     r.Publisher,
		Edition:       r.Edition,
		MinStockLevel: r.MinStockLevel,
	}
}

// ItemResponse represents a stock item in API responses.
type ItemResponse struct {
	ID              uuid.UUID         `json:"id"`
	Category        stock.Category    `json:"category"`
	ItemCode        string            `json:"item_code"`
	ItemName        string            `json:"item_name"`
	Company         string            `json:"company,omitempty"`
	Purpose         string            `json:"purpose,omitempty"`
	Description     string            `json:"description,omitempty"`
	UnitOfMeasure   string            `json:"unit_of_measure,omitempty"`
	CasNo           string            `json:"cas_no,omitempty"`
	MSDS            string            `json:"msds,omitempty"`
	SerialNumber    string            `json:"serial_number,omitempty"`
	ModelNumber     string            `json:"model_number,omitempty"`
	Author          string            `json:"author,omitempty"`
	Publisher       string            `json:"publisher,omitempty"`
	Edition         string            `json:"edition,omitempty"`
	TotalQuantity   decimal.Decimal   `json:"total_quantity"`
	CurrentQuantity decimal.Decimal   `json:"current_quantity"`
	MinStockLevel   decimal.Decimal   `json:"min_stock_level"`
	Status          stock.StockStatus `json:"status"`
	CreatedBy       string            `json:"created_by,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Version         int               `json:"version"`
}

// ToItemResponse converts a domain item to a response.
func ToItemResponse(item *stock.StockItem) ItemResponse {
	return ItemResponse{
		ID:              item.ID,
		Category:        item.Category,
		ItemCode:        item.ItemCode,
		ItemName:        item.ItemName,
		Company:         item.Company,
		Purpose:         item.Purpose,
		Description:     item.Description,
		UnitOfMeasure:   item.UnitOfMeasure,
		CasNo:           item.CasNo,
		MSDS:            item.MSDS,
		SerialNumber:    item.SerialNumber,
		ModelNumber:     item.ModelNumber,
		Author:          item.Author,
		Publisher:       item.Publisher,
		Edition:         item.Edition,
		TotalQuantity:   item.TotalQuantity,
		CurrentQuantity: item.CurrentQuantity,
		MinStockLevel:   item.MinStockLevel,
		Status:          item.Status,
		CreatedBy:       item.CreatedBy,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
		Version:         item.Version,
	}
}

// ItemSearchResult is the compact form used by item pickers.
type ItemSearchResult struct {
	ID       uuid.UUID `json:"id"`
	ItemCode string    `json:"item_code"`
	ItemName string    `json:"item_name"`
	Company  string    `json:"company,omitempty"`
}

// ItemListFilter represents the query parameters of an item listing.
type ItemListFilter struct {
	ItemCode      string `form:"item_code"`
	ItemName      string `form:"item_name"`
	Company       string `form:"company"`
	Status        string `form:"status"`
	Purpose       string `form:"purpose"`
	Description   string `form:"description"`
	UnitOfMeasure string `form:"unit_of_measure"`
	SerialNumber  string `form:"serial_number"`
	ModelNumber   string `form:"model_number"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// RestockRequest adds purchased quantity to an item identified by id, code or name.
type RestockRequest struct {
	ItemID              *uuid.UUID      `json:"item_id"`
	ItemCode            string          `json:"item_code"`
	ItemName            string          `json:"item_name"`
	InwardID            *uuid.UUID      `json:"inward_id"`
	InwardCode          string          `json:"inward_code"`
	QuantityPurchased   decimal.Decimal `json:"quantity_purchased"`
	ExpirationDate      string          `json:"expiration_date"`
	ExpirationAlertDate string          `json:"expiration_alert_date"`
	Location            string          `json:"location" binding:"max=200"`
	MaintenanceDate     string          `json:"maintenance_date"`
	MaintenanceDetails  string          `json:"maintenance_details" binding:"max=2000"`
}

// UpdateRestockRequest edits a restock record. A zero quantity keeps the current one.
type UpdateRestockRequest struct {
	QuantityPurchased   decimal.Decimal `json:"quantity_purchased"`
	InwardCode          string          `json:"inward_code"`
	ExpirationDate      string          `json:"expiration_date"`
	ExpirationAlertDate string          `json:"expiration_alert_date"`
	Location            string          `json:"location" binding:"max=200"`
	MaintenanceDate     string          `json:"maintenance_date"`
	MaintenanceDetails  string          `json:"maintenance_details" binding:"max=2000"`
}

// RestockResponse represents a restock record in API responses.
type RestockResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ItemID              uuid.UUID       `json:"item_id"`
	ItemCode            string          `json:"item_code,omitempty"`
	ItemName            string          `json:"item_name,omitempty"`
	InwardID            uuid.UUID       `json:"inward_id"`
	InwardCode          string          `json:"inward_code,omitempty"`
	QuantityPurchased   decimal.Decimal `json:"quantity_purchased"`
	ExpirationDate      *time.Time      `json:"expiration_date,omitempty"`
	ExpirationAlertDate *time.Time      `json:"expiration_alert_date,omitempty"`
	Location            string          `json:"location,omitempty"`
	MaintenanceDate     *time.Time      `json:"maintenance_date,omitempty"`
	MaintenanceDetails  string          `json:"maintenance_details,omitempty"`
	CreatedBy           string          `json:"created_by,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// ToRestockResponse converts a restock record to a response.
func ToRestockResponse(r *stock.RestockRecord) RestockResponse {
	return RestockResponse{
		ID:                  r.ID,
		ItemID:              r.ItemID,
		InwardID:            r.InwardID,
		QuantityPurchased:   r.QuantityPurchased,
		ExpirationDate:      r.ExpirationDate,
		ExpirationAlertDate: r.ExpirationAlertDate,
		Location:            r.Location,
		MaintenanceDate:     r.MaintenanceDate,
		MaintenanceDetails:  r.MaintenanceDetails,
		CreatedBy:           r.CreatedBy,
		CreatedAt:           r.CreatedAt,
	}
}

// RestockListFilter represents the query parameters of a restock listing.
type RestockListFilter struct {
	ItemCode string `form:"item_code"`
	ItemName string `form:"item_name"`
	Location string `form:"location"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// IssueRequest hands out stock against an optional lab request.
type IssueRequest struct {
	ItemID         uuid.UUID       `json:"item_id" binding:"required"`
	IssuedQuantity decimal.Decimal `json:"issued_quantity"`
	RequestModel   string          `json:"request_model"`
	RequestID      *uuid.UUID      `json:"request"`
	DateIssued     string          `json:"date_issued" binding:"required"`
	UserEmail      string          `json:"user_email" binding:"omitempty,email"`
}

// UpdateLogRequest edits an issue log. A nil quantity keeps the current one.
type UpdateLogRequest struct {
	IssuedQuantity *decimal.Decimal `json:"issued_quantity"`
	UserEmail      string           `json:"user_email" binding:"omitempty,email"`
	DateIssued     string           `json:"date_issued"`
}

// ReturnRequest records the return of an issued log.
type ReturnRequest struct {
	ReturnedQuantity      decimal.Decimal `json:"returned_quantity"`
	LostOrDamagedQuantity decimal.Decimal `json:"lost_or_damaged_quantity"`
	DateReturned          string          `json:"date_returned" binding:"required"`
}

// IssueLogResponse represents an issue log in API responses.
type IssueLogResponse struct {
	ID                    uuid.UUID          `json:"id"`
	ItemID                uuid.UUID          `json:"item_id"`
	ItemCode              string             `json:"item_code,omitempty"`
	ItemName              string             `json:"item_name,omitempty"`
	RequestModel          stock.RequestModel `json:"request_model,omitempty"`
	RequestID             *uuid.UUID         `json:"request,omitempty"`
	RequestCode           string             `json:"request_code,omitempty"`
	IssuedQuantity        decimal.Decimal    `json:"issued_quantity"`
	ReturnedQuantity      decimal.Decimal    `json:"returned_quantity"`
	LostOrDamagedQuantity decimal.Decimal    `json:"lost_or_damaged_quantity"`
	DateIssued            time.Time          `json:"date_issued"`
	DateReturned          *time.Time         `json:"date_returned,omitempty"`
	UserEmail             string             `json:"user_email,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
}

// ToIssueLogResponse converts an issue log to a response.
func ToIssueLogResponse(l *stock.IssueLog) IssueLogResponse {
	return IssueLogResponse{
		ID:                    l.ID,
		ItemID:                l.ItemID,
		RequestModel:          l.RequestModel,
		RequestID:             l.RequestID,
		IssuedQuantity:        l.IssuedQuantity,
		ReturnedQuantity:      l.ReturnedQuantity,
		LostOrDamagedQuantity: l.LostOrDamagedQuantity,
		DateIssued:            l.DateIssued,
		DateReturned:          l.DateReturned,
		UserEmail:             l.UserEmail,
		CreatedAt:             l.CreatedAt,
	}
}

// LogListFilter represents the query parameters of an issue log listing.
type LogListFilter struct {
	ItemCode  string `form:"item_code"`
	ItemName  string `form:"item_name"`
	UserEmail string `form:"user_email"`
	From      string `form:"from"`
	To        string `form:"to"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// MutationResponse is returned by every quantity-changing operation.
type MutationResponse struct {
	Message                       string            `json:"msg"`
	Item                          ItemResponse      `json:"item"`
	Log                           *IssueLogResponse `json:"log,omitempty"`
	Restock                       *RestockResponse  `json:"restock,omitempty"`
	StockRecoveryNotificationSent bool              `json:"stock_recovery_notification_sent"`
}

// MSDSResponse points at a stored safety data sheet.
type MSDSResponse struct {
	ItemID uuid.UUID `json:"item_id"`
	Key    string    `json:"key"`
	URL    string    `json:"url,omitempty"`
}

const dateLayout = "2006-01-02"

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(value, message string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", message)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", message)
	}
	return t, nil
}

// parseOptionalDate returns nil for an empty value.
func parseOptionalDate(value, message string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(value, message)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// dayRange turns from/to dates into an inclusive range covering whole days.
func dayRange(from, to string) (*time.Time, *time.Time, error) {
	start, err := parseOptionalDate(from, "Invalid from date.")
	if err != nil {
		return nil, nil, err
	}
	end, err := parseOptionalDate(to, "Invalid to date.")
	if err != nil {
		return nil, nil, err
	}
	if start != nil {
		s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		start = &s
	}
	if end != nil {
		e := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), end.Location())
		end = &e
	}
	return start, end, nil
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

// requestCodes maps request ids to their human-readable codes.
type requestCodes map[uuid.UUID]string

func newRequestCodes(requests []procurement.LabRequest) requestCodes {
	codes := make(requestCodes, len(requests))
	for _, r := range requests {
		codes[r.ID] = r.Code
	}
	return codes
}
