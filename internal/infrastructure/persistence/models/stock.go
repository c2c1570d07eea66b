package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// StockItemModel is the persistence model for the StockItem aggregate root.
// Every category shares the table; item codes are unique within a category.
type StockItemModel struct {
	VersionedRecord
	Category        string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_stock_items_category_code,priority:1;index"`
	ItemCode        string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_stock_items_category_code,priority:2"`
	ItemName        string          `gorm:"type:varchar(255);not null"`
	Company         string          `gorm:"type:varchar(255)"`
	Purpose         string          `gorm:"type:text"`
	Description     string          `gorm:"type:text"`
	UnitOfMeasure   string          `gorm:"type:varchar(50)"`
	CasNo           string          `gorm:"type:varchar(50)"`
	MSDS            string          `gorm:"column:msds;type:varchar(512)"`
	SerialNumber    string          `gorm:"type:varchar(100)"`
	ModelNumber     string          `gorm:"type:varchar(100)"`
	Author          string          `gorm:"type:varchar(255)"`
	Publisher       string          `gorm:"type:varchar(255)"`
	Edition         string          `gorm:"type:varchar(50)"`
	TotalQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrentQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStockLevel   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status          string          `gorm:"type:varchar(20);not null;index"`
	CreatedBy       string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM.
func (StockItemModel) TableName() string {
	return "stock_items"
}

// ToDomain converts the persistence model to a domain StockItem.
func (m *StockItemModel) ToDomain() *stock.StockItem {
	return &stock.StockItem{
		BaseAggregateRoot: m.Aggregate(),
		Category:          stock.Category(m.Category),
		ItemCode:          m.ItemCode,
		ItemName:          m.ItemName,
		Company:           m.Company,
		Purpose:           m.Purpose,
		Description:       m.Description,
		UnitOfMeasure:     m.UnitOfMeasure,
		CasNo:             m.CasNo,
		MSDS:              m.MSDS,
		SerialNumber:      m.SerialNumber,
		ModelNumber:       m.ModelNumber,
		Author:            m.Author,
		Publisher:         m.Publisher,
		Edition:           m.Edition,
		TotalQuantity:     m.TotalQuantity,
		CurrentQuantity:   m.CurrentQuantity,
		MinStockLevel:     m.MinStockLevel,
		Status:            stock.StockStatus(m.Status),
		CreatedBy:         m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain StockItem.
func (m *StockItemModel) FromDomain(i *stock.StockItem) {
	m.SetAggregate(i.BaseAggregateRoot)
	m.Category = string(i.Category)
	m.ItemCode = i.ItemCode
	m.ItemName = i.ItemName
	m.Company = i.Company
	m.Purpose = i.Purpose
	m.Description = i.Description
	m.UnitOfMeasure = i.UnitOfMeasure
	m.CasNo = i.CasNo
	m.MSDS = i.MSDS
	m.SerialNumber = i.SerialNumber
	m.ModelNumber = i.ModelNumber
	m.Author = i.Author
	m.Publisher = i.Publisher
	m.Edition = i.Edition
	m.TotalQuantity = i.TotalQuantity
	m.CurrentQuantity = i.CurrentQuantity
	m.MinStockLevel = i.MinStockLevel
	m.Status = string(i.Status)
	m.CreatedBy = i.CreatedBy
}

// StockItemModelFromDomain creates a persistence model from a domain StockItem.
func StockItemModelFromDomain(i *stock.StockItem) *StockItemModel {
	m := &StockItemModel{}
	m.FromDomain(i)
	return m
}

// RestockModel is the persistence model for RestockRecord.
type RestockModel struct {
	Record
	ItemID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	Category            string          `gorm:"type:varchar(32);not null;index"`
	InwardID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityPurchased   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpirationDate      *time.Time      `gorm:"index"`
	ExpirationAlertDate *time.Time
	Location            string `gorm:"type:varchar(255)"`
	MaintenanceDate     *time.Time
	MaintenanceDetails  string `gorm:"type:text"`
	CreatedBy           string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM.
func (RestockModel) TableName() string {
	return "restocks"
}

// ToDomain converts the persistence model to a domain RestockRecord.
func (m *RestockModel) ToDomain() *stock.RestockRecord {
	return &stock.RestockRecord{
		BaseEntity:          m.Entity(),
		ItemID:              m.ItemID,
		Category:            stock.Category(m.Category),
		InwardID:            m.InwardID,
		QuantityPurchased:   m.QuantityPurchased,
		ExpirationDate:      m.ExpirationDate,
		ExpirationAlertDate: m.ExpirationAlertDate,
		Location:            m.Location,
		MaintenanceDate:     m.MaintenanceDate,
		MaintenanceDetails:  m.MaintenanceDetails,
		CreatedBy:           m.CreatedBy,
	}
}

// RestockModelFromDomain creates a persistence model from a domain RestockRecord.
func RestockModelFromDomain(r *stock.RestockRecord) *RestockModel {
	m := &RestockModel{
		ItemID:              r.ItemID,
		Category:            string(r.Category),
		InwardID:            r.InwardID,
		QuantityPurchased:   r.QuantityPurchased,
		ExpirationDate:      r.ExpirationDate,
		ExpirationAlertDate: r.ExpirationAlertDate,
		Location:            r.Location,
		MaintenanceDate:     r.MaintenanceDate,
		MaintenanceDetails:  r.MaintenanceDetails,
		CreatedBy:           r.CreatedBy,
	}
	m.SetEntity(r.BaseEntity)
	return m
}

// IssueLogModel is the persistence model for IssueLog.
type IssueLogModel struct {
	Record
	ItemID                uuid.UUID       `gorm:"type:uuid;not null;index"`
	Category              string          `gorm:"type:varchar(32);not null;index"`
	RequestModel          string          `gorm:"type:varchar(32)"`
	RequestID             *uuid.UUID      `gorm:"type:uuid;index"`
	IssuedQuantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReturnedQuantity      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LostOrDamagedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DateIssued            time.Time       `gorm:"not null;index"`
	DateReturned          *time.Time
	UserEmail             string `gorm:"type:varchar(255);index"`
}

// TableName returns the table name for GORM.
func (IssueLogModel) TableName() string {
	return "issue_logs"
}

// ToDomain converts the persistence model to a domain IssueLog.
func (m *IssueLogModel) ToDomain() *stock.IssueLog {
	return &stock.IssueLog{
		BaseEntity:            m.Entity(),
		ItemID:                m.ItemID,
		Category:              stock.Category(m.Category),
		RequestModel:          stock.RequestModel(m.RequestModel),
		RequestID:             m.RequestID,
		IssuedQuantity:        m.IssuedQuantity,
		ReturnedQuantity:      m.ReturnedQuantity,
		LostOrDamagedQuantity: m.LostOrDamagedQuantity,
		DateIssued:            m.DateIssued,
		DateReturned:          m.DateReturned,
		UserEmail:             m.UserEmail,
	}
}

// IssueLogModelFromDomain creates a persistence model from a domain IssueLog.
func IssueLogModelFromDomain(l *stock.IssueLog) *IssueLogModel {
	m := &IssueLogModel{
		ItemID:                l.ItemID,
		Category:              string(l.Category),
		RequestModel:          string(l.RequestModel),
		RequestID:             l.RequestID,
		IssuedQuantity:        l.IssuedQuantity,
		ReturnedQuantity:      l.ReturnedQuantity,
		LostOrDamagedQuantity: l.LostOrDamagedQuantity,
		DateIssued:            l.DateIssued,
		DateReturned:          l.DateReturned,
		UserEmail:             l.UserEmail,
	}
	m.SetEntity(l.BaseEntity)
	return m
}

// NotificationModel is the persistence model for Notification.
// The (item_id, type) unique index makes creation idempotent.
type NotificationModel struct {
	Record
	ItemID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_notifications_item_type,priority:1"`
	Type      string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_notifications_item_type,priority:2;index"`
	Category  string     `gorm:"type:varchar(32);index"`
	Title     string     `gorm:"type:varchar(255);not null"`
	Message   string     `gorm:"type:text;not null"`
	SendTo    string     `gorm:"type:varchar(255)"`
	ExpiresAt *time.Time
}

// TableName returns the table name for GORM.
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
func (m *NotificationModel) ToDomain() *stock.Notification {
	return &stock.Notification{
		BaseEntity: m.Entity(),
		ItemID:     m.ItemID,
		Category:   stock.Category(m.Category),
		Type:       stock.NotificationType(m.Type),
		Title:      m.Title,
		Message:    m.Message,
		SendTo:     splitRoles(m.SendTo),
		ExpiresAt:  m.ExpiresAt,
	}
}

// NotificationModelFromDomain creates a persistence model from a domain Notification.
func NotificationModelFromDomain(n *stock.Notification) *NotificationModel {
	m := &NotificationModel{
		ItemID:    n.ItemID,
		Type:      string(n.Type),
		Category:  string(n.Category),
		Title:     n.Title,
		Message:   n.Message,
		SendTo:    strings.Join(n.SendTo, ","),
		ExpiresAt: n.ExpiresAt,
	}
	m.SetEntity(n.BaseEntity)
	return m
}

func splitRoles(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
