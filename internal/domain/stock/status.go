package stock

import "github.com/shopspring/decimal"

// StockStatus is the derived availability of a stock item.
type StockStatus string

const (
	StatusOutOfStock StockStatus = "Out of Stock"
	StatusLowStock   StockStatus = "Low Stock"
	StatusInStock    StockStatus = "In Stock"
)

// IsValid reports whether the status is one of the known values.
func (s StockStatus) IsValid() bool {
	switch s {
	case StatusOutOfStock, StatusLowStock, StatusInStock:
		return true
	}
	return false
}

// NeedsAttention reports whether a later recovery to InStock should be announced.
func (s StockStatus) NeedsAttention() bool {
	return s == StatusOutOfStock || s == StatusLowStock
}

// StatusOf derives the status from the current quantity and the minimum stock level.
// A quantity equal to the minimum is LowStock.
func StatusOf(current, minLevel decimal.Decimal) StockStatus {
	switch {
	case current.Sign() <= 0:
		return StatusOutOfStock
	case current.LessThanOrEqual(minLevel):
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// IsZeroStock is the dashboard's zero-stock predicate.
func IsZeroStock(current decimal.Decimal) bool {
	return current.Sign() <= 0
}

// IsDashboardLowStock is the dashboard's low-stock predicate: 0 < current < min.
// It is stricter than StatusOf at current == min.
func IsDashboardLowStock(current, minLevel decimal.Decimal) bool {
	return current.Sign() > 0 && current.LessThan(minLevel)
}

// IsInStock is the dashboard's in-stock predicate.
func IsInStock(current, minLevel decimal.Decimal) bool {
	return current.GreaterThan(minLevel)
}
