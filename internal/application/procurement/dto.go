package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// CreateInwardRequest records goods received for a registered item.
type CreateInwardRequest struct {
	InwardCode    string          `json:"inward_code" binding:"required,min=1,max=50"`
	Category      string          `json:"class" binding:"required"`
	ItemID        uuid.UUID       `json:"item" binding:"required"`
	Description   string          `json:"description" binding:"max=2000"`
	Grade         string          `json:"grade" binding:"max=100"`
	CasNo         string          `json:"cas_no" binding:"max=50"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	Unit          string          `json:"unit" binding:"required,max=50"`
	VendorName    string          `json:"vendor" binding:"required,max=200"`
	InvoiceNumber string          `json:"invoice_number" binding:"max=100"`
}

// InwardResponse represents an inward receipt in API responses.
type InwardResponse struct {
	ID            uuid.UUID       `json:"id"`
	InwardCode    string          `json:"inward_code"`
	Category      stock.Category  `json:"class"`
	ItemID        uuid.UUID       `json:"item"`
	Description   string          `json:"description,omitempty"`
	Grade         string          `json:"grade,omitempty"`
	CasNo         string          `json:"cas_no,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	VendorName    string          `json:"vendor"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToInwardResponse converts a domain InwardReceipt to InwardResponse.
func ToInwardResponse(r *procurement.InwardReceipt) InwardResponse {
	return InwardResponse{
		ID:            r.ID,
		InwardCode:    r.InwardCode,
		Category:      r.Category,
		ItemID:        r.ItemID,
		Description:   r.Description,
		Grade:         r.Grade,
		CasNo:         r.CasNo,
		Quantity:      r.Quantity,
		Unit:          r.Unit,
		VendorName:    r.VendorName,
		InvoiceNumber: r.InvoiceNumber,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
	}
}

// InwardListFilter represents the query parameters of an inward listing.
type InwardListFilter struct {
	Category   string `form:"class"`
	InwardCode string `form:"inward_code"`
	VendorName string `form:"vendor"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// CreateLabRequestRequest opens a requisition, order request or new indent.
type CreateLabRequestRequest struct {
	Model             string `json:"model" binding:"required"`
	Purpose           string `json:"purpose" binding:"required,max=500"`
	DateOfRequirement string `json:"date_of_requirement" binding:"required"`
	Remark            string `json:"remark" binding:"max=1000"`
}

// ReviewLabRequestRequest approves or rejects a pending request.
type ReviewLabRequestRequest struct {
	Status string `json:"status" binding:"required"`
	Remark string `json:"remark" binding:"max=1000"`
}

// LabRequestListFilter is the query of a lab request listing.
type LabRequestListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Model    string `form:"model"`
	Status   string `form:"status"`
	Code     string `form:"code"`
}

func (f LabRequestListFilter) toDomain() (procurement.LabRequestFilter, error) {
	filter := procurement.LabRequestFilter{Filter: pageOf(f.Page, f.PageSize)}
	filter.OrderBy = f.OrderBy
	filter.OrderDir = f.OrderDir
	filter.Search = f.Code

	model, err := stock.ParseRequestModel(f.Model)
	if err != nil {
		return filter, err
	}
	filter.Model = model
	if f.Status != "" {
		status, err := procurement.ParseRequestStatus(f.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	return filter, nil
}

// LabRequestResponse represents a lab request in API responses.
type LabRequestResponse struct {
	ID                uuid.UUID                 `json:"id"`
	Model             stock.RequestModel        `json:"model"`
	Code              string                    `json:"code"`
	Purpose           string                    `json:"purpose"`
	DateOfRequirement time.Time                 `json:"date_of_requirement"`
	Status            procurement.RequestStatus `json:"status"`
	RequestedBy       string                    `json:"requested_by,omitempty"`
	Remark            string                    `json:"remark,omitempty"`
	ReviewedBy        string                    `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time                `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
}

// ToLabRequestResponse converts a domain LabRequest to LabRequestResponse.
func ToLabRequestResponse(r *procurement.LabRequest) LabRequestResponse {
	return LabRequestResponse{
		ID:                r.ID,
		Model:             r.Model,
		Code:              r.Code,
		Purpose:           r.Purpose,
		DateOfRequirement: r.DateOfRequirement,
		Status:            r.Status,
		RequestedBy:       r.RequestedBy,
		Remark:            r.Remark,
		ReviewedBy:        r.ReviewedBy,
		ReviewedAt:        r.ReviewedAt,
		CreatedAt:         r.CreatedAt,
	}
}
