package notification

import (
	"context"
	"fmt"
	"sort"

	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// Mailer delivers notification emails.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// CreatedRecorder records notification metrics.
type CreatedRecorder interface {
	RecordNotificationCreated(ctx context.Context, category, notificationType string)
}

// NotificationCreatedHandler handles StockNotificationCreated events: it logs the alert,
// emails the recipients configured for the notification's roles and records a metric.
type NotificationCreatedHandler struct {
	logger     *zap.Logger
	mailer     Mailer
	recipients map[string][]string
	recorder   CreatedRecorder
}

// NewNotificationCreatedHandler creates a new handler for notification created events.
func NewNotificationCreatedHandler(logger *zap.Logger) *NotificationCreatedHandler {
	return &NotificationCreatedHandler{
		logger:     logger,
		recipients: make(map[string][]string),
	}
}

// WithMailer sets the mailer and the email addresses of each role.
func (h *NotificationCreatedHandler) WithMailer(mailer Mailer, recipients map[string][]string) *NotificationCreatedHandler {
	h.mailer = mailer
	if recipients != nil {
		h.recipients = recipients
	}
	return h
}

// WithRecorder sets the metrics recorder.
func (h *NotificationCreatedHandler) WithRecorder(recorder CreatedRecorder) *NotificationCreatedHandler {
	h.recorder = recorder
	return h
}

// EventTypes returns the event types this handler is interested in.
func (h *NotificationCreatedHandler) EventTypes() []string {
	return []string{stock.EventTypeStockNotificationCreated}
}

// Handle processes a StockNotificationCreatedEvent.
func (h *NotificationCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*stock.StockNotificationCreatedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", stock.EventTypeStockNotificationCreated),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			stock.EventTypeStockNotificationCreated, event.EventType())
	}

	h.logger.Warn("stock notification created",
		zap.String("notification_id", created.NotificationID.String()),
		zap.String("item_id", created.AggregateID().String()),
		zap.String("category", string(created.Category)),
		zap.String("notification_type", string(created.Type)),
		zap.String("title", created.Title),
	)

	if h.recorder != nil {
		h.recorder.RecordNotificationCreated(ctx, string(created.Category), string(created.Type))
	}

	if h.mailer == nil {
		return nil
	}
	to := h.addressesFor(created.SendTo)
	if len(to) == 0 {
		h.logger.Debug("no email recipients configured", zap.Strings("send_to", created.SendTo))
		return nil
	}
	if err := h.mailer.Send(ctx, to, created.Title, created.Message); err != nil {
		// delivery failure must not fail the mutation that raised the event
		h.logger.Error("failed to email notification",
			zap.String("notification_id", created.NotificationID.String()),
			zap.Error(err),
		)
		return nil
	}
	h.logger.Info("notification emailed",
		zap.String("notification_id", created.NotificationID.String()),
		zap.Int("recipients", len(to)),
	)
	return nil
}

// addressesFor expands roles into a sorted, de-duplicated address list.
func (h *NotificationCreatedHandler) addressesFor(roles []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, role := range roles {
		for _, addr := range h.recipients[role] {
			if addr == "" || seen[addr] {
				continue
			}
			seen[addr] = true
			out = append(out, addr)
		}
	}
	sort.Strings(out)
	return out
}

// Ensure NotificationCreatedHandler implements shared.EventHandler.
var _ shared.EventHandler = (*NotificationCreatedHandler)(nil)
