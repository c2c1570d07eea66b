package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// InwardModel is the persistence model for InwardReceipt.
type InwardModel struct {
	Record
	InwardCode    string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Category      string          `gorm:"type:varchar(32);not null;index"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description   string          `gorm:"type:text"`
	Grade         string          `gorm:"type:varchar(100)"`
	CasNo         string          `gorm:"type:varchar(50)"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit          string          `gorm:"type:varchar(50);not null"`
	VendorName    string          `gorm:"type:varchar(255);not null"`
	InvoiceNumber string          `gorm:"type:varchar(100)"`
	CreatedBy     string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM.
func (InwardModel) TableName() string {
	return "inwards"
}

// ToDomain converts the persistence model to a domain InwardReceipt.
func (m *InwardModel) ToDomain() *procurement.InwardReceipt {
	return &procurement.InwardReceipt{
		BaseEntity:    m.Entity(),
		InwardCode:    m.InwardCode,
		Category:      stock.Category(m.Category),
		ItemID:        m.ItemID,
		Description:   m.Description,
		Grade:         m.Grade,
		CasNo:         m.CasNo,
		Quantity:      m.Quantity,
		Unit:          m.Unit,
		VendorName:    m.VendorName,
		InvoiceNumber: m.InvoiceNumber,
		CreatedBy:     m.CreatedBy,
	}
}

// InwardModelFromDomain creates a persistence model from a domain InwardReceipt.
func InwardModelFromDomain(r *procurement.InwardReceipt) *InwardModel {
	m := &InwardModel{
		InwardCode:    r.InwardCode,
		Category:      string(r.Category),
		ItemID:        r.ItemID,
		Description:   r.Description,
		Grade:         r.Grade,
		CasNo:         r.CasNo,
		Quantity:      r.Quantity,
		Unit:          r.Unit,
		VendorName:    r.VendorName,
		InvoiceNumber: r.InvoiceNumber,
		CreatedBy:     r.CreatedBy,
	}
	m.SetEntity(r.BaseEntity)
	return m
}

// LabRequestModel is the persistence model for LabRequest.
type LabRequestModel struct {
	Record
	Model             string     `gorm:"type:varchar(32);not null;index"`
	Code              string     `gorm:"type:varchar(32);not null;uniqueIndex"`
	Purpose           string     `gorm:"type:text;not null"`
	DateOfRequirement time.Time  `gorm:"not null"`
	Status            string     `gorm:"type:varchar(20);not null;index"`
	RequestedBy       string     `gorm:"type:varchar(255)"`
	Remark            string     `gorm:"type:text"`
	ReviewedBy        string     `gorm:"type:varchar(255)"`
	ReviewedAt        *time.Time
}

// TableName returns the table name for GORM.
func (LabRequestModel) TableName() string {
	return "lab_requests"
}

// ToDomain converts the persistence model to a domain LabRequest.
func (m *LabRequestModel) ToDomain() *procurement.LabRequest {
	return &procurement.LabRequest{
		BaseEntity:        m.Entity(),
		Model:             stock.RequestModel(m.Model),
		Code:              m.Code,
		Purpose:           m.Purpose,
		DateOfRequirement: m.DateOfRequirement,
		Status:            procurement.RequestStatus(m.Status),
		RequestedBy:       m.RequestedBy,
		Remark:            m.Remark,
		ReviewedBy:        m.ReviewedBy,
		ReviewedAt:        m.ReviewedAt,
	}
}

// LabRequestModelFromDomain creates a persistence model from a domain LabRequest.
func LabRequestModelFromDomain(r *procurement.LabRequest) *LabRequestModel {
	m := &LabRequestModel{
		Model:             string(r.Model),
		Code:              r.Code,
		Purpose:           r.Purpose,
		DateOfRequirement: r.DateOfRequirement,
		Status:            string(r.Status),
		RequestedBy:       r.RequestedBy,
		Remark:            r.Remark,
		ReviewedBy:        r.ReviewedBy,
		ReviewedAt:        r.ReviewedAt,
	}
	m.SetEntity(r.BaseEntity)
	return m
}

// AllModels returns every persisted model, for AutoMigrate in tests and tooling.
func AllModels() []any {
	return []any{
		&StockItemModel{},
		&RestockModel{},
		&IssueLogModel{},
		&NotificationModel{},
		&InwardModel{},
		&LabRequestModel{},
	}
}
