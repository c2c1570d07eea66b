package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StockMetrics holds the stock movement and notification instruments.
type StockMetrics struct {
	movements     *Counter
	movedQuantity metric.Float64Counter
	notifications *Counter
	lowStock      *Gauge
	outOfStock    *Gauge
}

// NewStockMetrics creates the stock instruments on meter.
func NewStockMetrics(meter metric.Meter) (*StockMetrics, error) {
	movements, err := NewCounter(meter, "stock_movements_total", "Quantity-changing stock operations", "{operation}")
	if err != nil {
		return nil, err
	}
	moved, err := meter.Float64Counter("stock_moved_quantity_total",
		metric.WithDescription("Absolute quantity moved by stock operations"),
		metric.WithUnit("{unit}"))
	if err != nil {
		return nil, err
	}
	notifications, err := NewCounter(meter, "stock_notifications_created_total", "Notifications inserted", "{notification}")
	if err != nil {
		return nil, err
	}
	low, err := NewGauge(meter, "stock_low_items", "Items at or below their minimum stock level", "{item}")
	if err != nil {
		return nil, err
	}
	out, err := NewGauge(meter, "stock_out_items", "Items with no stock left", "{item}")
	if err != nil {
		return nil, err
	}
	return &StockMetrics{
		movements:     movements,
		movedQuantity: moved,
		notifications: notifications,
		lowStock:      low,
		outOfStock:    out,
	}, nil
}

// RecordStockMovement counts one issue, return or restock operation.
func (m *StockMetrics) RecordStockMovement(ctx context.Context, category, reason string, delta decimal.Decimal) {
	attrs := []attribute.KeyValue{
		attribute.String("category", category),
		attribute.String("reason", reason),
	}
	m.movements.Inc(ctx, attrs...)
	m.movedQuantity.Add(ctx, delta.Abs().InexactFloat64(), metric.WithAttributes(attrs...))
}

// RecordNotificationCreated counts an inserted notification.
func (m *StockMetrics) RecordNotificationCreated(ctx context.Context, category, notificationType string) {
	m.notifications.Inc(ctx,
		attribute.String("category", category),
		attribute.String("type", notificationType),
	)
}

// RecordStockLevels sets the low and out of stock gauges of a category.
func (m *StockMetrics) RecordStockLevels(ctx context.Context, category string, lowStock, outOfStock int64) {
	attr := attribute.String("category", category)
	m.lowStock.Record(ctx, lowStock, attr)
	m.outOfStock.Record(ctx, outOfStock, attr)
}
