package stock

import (
	"context"
	"fmt"

	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MovementRecorder receives every stock level change.
type MovementRecorder interface {
	RecordStockMovement(ctx context.Context, category, reason string, delta decimal.Decimal)
}

// StockLevelChangedHandler logs stock level changes and forwards them to a recorder.
// Status transitions into LowStock or OutOfStock are logged at Warn.
type StockLevelChangedHandler struct {
	logger   *zap.Logger
	recorder MovementRecorder
}

// NewStockLevelChangedHandler creates a new handler for stock level changed events.
func NewStockLevelChangedHandler(logger *zap.Logger) *StockLevelChangedHandler {
	return &StockLevelChangedHandler{logger: logger}
}

// WithRecorder sets the movement recorder.
func (h *StockLevelChangedHandler) WithRecorder(recorder MovementRecorder) *StockLevelChangedHandler {
	h.recorder = recorder
	return h
}

// EventTypes returns the event types this handler is interested in.
func (h *StockLevelChangedHandler) EventTypes() []string {
	return []string{stock.EventTypeStockLevelChanged}
}

// Handle processes a StockLevelChangedEvent.
func (h *StockLevelChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*stock.StockLevelChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			stock.EventTypeStockLevelChanged, event.EventType())
	}

	fields := []zap.Field{
		zap.String("item_id", changed.AggregateID().String()),
		zap.String("item_code", changed.ItemCode),
		zap.String("category", string(changed.Category)),
		zap.String("reason", string(changed.Reason)),
		zap.String("delta", changed.Delta.String()),
		zap.String("current_quantity", changed.CurrentQuantity.String()),
		zap.String("status", string(changed.Status)),
	}
	if changed.StatusChanged() && changed.Status.NeedsAttention() {
		h.logger.Warn("stock level needs attention", append(fields, zap.String("previous_status", string(changed.PreviousStatus)))...)
	} else {
		h.logger.Debug("stock level changed", fields...)
	}

	if h.recorder != nil && !changed.Delta.IsZero() {
		h.recorder.RecordStockMovement(ctx, string(changed.Category), string(changed.Reason), changed.Delta)
	}
	return nil
}

var _ shared.EventHandler = (*StockLevelChangedHandler)(nil)
