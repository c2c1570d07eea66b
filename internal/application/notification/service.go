package notification

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// NotificationService exposes stock and expiry notifications to users.
type NotificationService struct {
	repo           stock.NotificationRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo stock.NotificationRepository) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: zap.NewNop(),
	}
}

// SetEventPublisher sets the publisher used for notifications created through Create.
func (s *NotificationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger.
func (s *NotificationService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

func (l ListFilter) toDomain(roles []string) (stock.NotificationFilter, error) {
	filter := stock.NotificationFilter{ItemID: l.ItemID, Roles: roles}
	if l.Type != "" {
		t, err := stock.ParseNotificationType(l.Type)
		if err != nil {
			return filter, err
		}
		filter.Type = t
	}
	if l.Category != "" {
		c, err := stock.ParseCategory(l.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = c
	}
	return filter, nil
}

// ListForRoles returns the notifications addressed to any of the roles, newest first.
// Listing never writes.
func (s *NotificationService) ListForRoles(ctx context.Context, roles []string, filter ListFilter) ([]NotificationResponse, error) {
	domainFilter, err := filter.toDomain(roles)
	if err != nil {
		return nil, err
	}
	notifications, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		if !notifications[i].VisibleTo(roles) {
			continue
		}
		responses = append(responses, ToNotificationResponse(&notifications[i]))
	}
	return responses, nil
}

// FindOne returns the notification of a given type for an item or restock.
func (s *NotificationService) FindOne(ctx context.Context, itemID uuid.UUID, notificationType string) (*NotificationResponse, error) {
	t, err := stock.ParseNotificationType(notificationType)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.FindOne(ctx, itemID, t)
	if err != nil {
		return nil, notFound(err)
	}
	resp := ToNotificationResponse(n)
	return &resp, nil
}

// Create inserts a notification unless one of the same type already exists for the item.
// The second return value reports whether a row was inserted.
func (s *NotificationService) Create(ctx context.Context, req CreateNotificationRequest) (*NotificationResponse, bool, error) {
	t, err := stock.ParseNotificationType(req.Type)
	if err != nil {
		return nil, false, err
	}
	c, err := stock.ParseCategory(req.Category)
	if err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, false, shared.NewDomainError(shared.CodeInvalidInput, "Title and message are required")
	}
	sendTo := req.SendTo
	if len(sendTo) == 0 {
		sendTo = stock.StockRecipients()
	}

	n := &stock.Notification{
		BaseEntity: shared.NewBaseEntity(),
		ItemID:     req.ItemID,
		Category:   c,
		Type:       t,
		Title:      strings.TrimSpace(req.Title),
		Message:    strings.TrimSpace(req.Message),
		SendTo:     sendTo,
		ExpiresAt:  req.ExpiresAt,
	}
	inserted, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		existing, err := s.repo.FindOne(ctx, req.ItemID, t)
		if err != nil {
			return nil, false, err
		}
		resp := ToNotificationResponse(existing)
		return &resp, false, nil
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, stock.NewStockNotificationCreatedEvent(n)); err != nil {
			s.logger.Error("failed to publish notification event", zap.String("notification_id", n.ID.String()), zap.Error(err))
		}
	}
	resp := ToNotificationResponse(n)
	return &resp, true, nil
}

// Delete removes one notification.
func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.logger.Info("notification deleted", zap.String("notification_id", id.String()))
	return nil
}

// DeleteMany removes every notification matching the request. An empty request is
// rejected rather than clearing the table.
func (s *NotificationService) DeleteMany(ctx context.Context, req DeleteManyRequest) (int64, error) {
	filter, err := ListFilter{ItemID: req.ItemID, Type: req.Type, Category: req.Category}.toDomain(nil)
	if err != nil {
		return 0, err
	}
	if filter.IsEmpty() {
		return 0, shared.NewDomainError(shared.CodeInvalidInput, "At least one of item_id, notification_type or category is required")
	}
	deleted, err := s.repo.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	s.logger.Info("notifications deleted",
		zap.Int64("count", deleted),
		zap.String("notification_type", string(filter.Type)),
		zap.String("category", string(filter.Category)),
	)
	return deleted, nil
}

func notFound(err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) && de == shared.ErrNotFound {
		return shared.NewDomainError(shared.CodeNotFound, "Notification not found")
	}
	return err
}
