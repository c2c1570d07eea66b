package dashboard

import (
	appstock "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// CategorySummary is the rollup of one category.
type CategorySummary struct {
	Category       stock.Category  `json:"category"`
	Label          string          `json:"label"`
	TotalCount     int64           `json:"total_count"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
	LowStockCount  int64           `json:"low_stock_count"`
	ZeroStockCount int64           `json:"zero_stock_count"`
	InStockCount   int64           `json:"in_stock_count"`
}

// Response is the dashboard rollup across every category.
type Response struct {
	Categories      []CategorySummary       `json:"categories"`
	TotalCount      int64                   `json:"total_count"`
	TotalQuantity   decimal.Decimal         `json:"total_quantity"`
	LowStockCount   int64                   `json:"low_stock_count"`
	ZeroStockCount  int64                   `json:"zero_stock_count"`
	InStockCount    int64                   `json:"in_stock_count"`
	NearExpiryCount int64                   `json:"near_expiry_count"`
	ExpiredCount    int64                   `json:"expired_count"`
	LowStockItems   []appstock.ItemResponse `json:"low_stock_items"`
	OutOfStockItems []appstock.ItemResponse `json:"out_of_stock_items"`
	NearExpiryItems []ExpiryEntry           `json:"near_expiry_items"`
	ExpiredItems    []ExpiryEntry           `json:"expired_items"`
}

// ExpiryEntry is a restock record in its alert window or past its expiration date.
type ExpiryEntry struct {
	Category stock.Category           `json:"category"`
	Restock  appstock.RestockResponse `json:"restock"`
}

// ScanResult summarizes one expiry scan.
type ScanResult struct {
	RestocksScanned      int   `json:"restocks_scanned"`
	NotificationsCreated int   `json:"notifications_created"`
	StaleRemoved         int64 `json:"stale_notifications_removed"`
}
