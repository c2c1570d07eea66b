package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultRetryAttempts is how often a mutation is attempted when it loses an optimistic lock race.
const DefaultRetryAttempts = 3

// Repositories groups the read-side repositories a StockService needs.
type Repositories struct {
	Items         stock.StockItemRepository
	Restocks      stock.RestockRepository
	Logs          stock.IssueLogRepository
	Notifications stock.NotificationRepository
	Inwards       procurement.InwardRepository
	Requests      procurement.LabRequestRepository
}

// StockService implements the stock engine for one category. Every category runs the
// same code; the descriptor switches returns, expiry, maintenance and hazard data on or off.
type StockService struct {
	desc           stock.Descriptor
	repos          Repositories
	txScope        TransactionScope
	locker         ItemLocker
	documents      DocumentStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	retryAttempts  int
	now            func() time.Time
}

// NewStockService creates a StockService for the category described by desc.
func NewStockService(desc stock.Descriptor, repos Repositories, txScope TransactionScope) *StockService {
	return &StockService{
		desc:          desc,
		repos:         repos,
		txScope:       txScope,
		locker:        noopLocker{},
		logger:        zap.NewNop(),
		retryAttempts: DefaultRetryAttempts,
		now:           time.Now,
	}
}

// SetEventPublisher sets the publisher for item and notification events.
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLocker sets the per-item locker.
func (s *StockService) SetLocker(locker ItemLocker) {
	if locker != nil {
		s.locker = locker
	}
}

// SetDocumentStorage sets the store for MSDS documents.
func (s *StockService) SetDocumentStorage(documents DocumentStorage) {
	s.documents = documents
}

// SetLogger sets the logger.
func (s *StockService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger.With(zap.String("category", string(s.desc.Category)))
	}
}

// SetRetryAttempts sets how many times a conflicting mutation is attempted.
func (s *StockService) SetRetryAttempts(n int) {
	if n > 0 {
		s.retryAttempts = n
	}
}

// Descriptor returns the category descriptor of the service.
func (s *StockService) Descriptor() stock.Descriptor {
	return s.desc
}

// =============================================================================
// Mutation pipeline
// =============================================================================

// mutation changes item (and any records it owns) inside a transaction.
// The item is saved and notifications reconciled after it returns.
type mutation func(ctx context.Context, repos TransactionalRepositories, item *stock.StockItem) error

type mutationResult struct {
	item          *stock.StockItem
	notifications []*stock.Notification
}

func (r *mutationResult) recoverySent() bool {
	return hasType(r.notifications, stock.NotificationStockRecovered)
}

// mutate runs fn under the item lock and a transaction, retrying on version conflicts.
func (s *StockService) mutate(ctx context.Context, op string, itemID uuid.UUID, fn mutation) (*mutationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", op)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCategory, string(s.desc.Category),
		telemetry.SpanAttrItemID, itemID.String(),
	)

	unlock, err := s.locker.Lock(ctx, itemID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to lock item: %w", err)
	}
	defer unlock()

	var result *mutationResult
	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		result, err = s.runMutation(ctx, itemID, fn)
		if err == nil || !errors.Is(err, shared.ErrOptimisticLock) {
			break
		}
		telemetry.SetAttribute(span, telemetry.SpanAttrAttempt, attempt)
		s.logger.Warn("stock mutation lost a version race",
			zap.String("operation", op),
			zap.String("item_id", itemID.String()),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("stock mutated",
		zap.String("operation", op),
		zap.String("item_id", itemID.String()),
		zap.String("current_quantity", result.item.CurrentQuantity.String()),
		zap.String("status", string(result.item.Status)),
		zap.Int("notifications_created", len(result.notifications)),
	)
	telemetry.SetAttribute(span, telemetry.SpanAttrStatus, string(result.item.Status))
	telemetry.SetOK(span)

	s.publish(ctx, result.item, result.notifications)
	return result, nil
}

func (s *StockService) runMutation(ctx context.Context, itemID uuid.UUID, fn mutation) (*mutationResult, error) {
	var result *mutationResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.ItemRepo().FindByID(ctx, s.desc.Category, itemID)
		if err != nil {
			return err
		}
		before := item.Snapshot()

		if err := fn(ctx, repos, item); err != nil {
			return err
		}
		if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}

		intents := stock.ReconcileStockNotifications(before, item.Snapshot())
		created, err := ApplyNotificationIntents(ctx, repos.NotificationRepo(), intents)
		if err != nil {
			return err
		}
		result = &mutationResult{item: item, notifications: created}
		return nil
	})
	return result, err
}

// publish sends item events and notification events. Failures are logged by the bus.
func (s *StockService) publish(ctx context.Context, item *stock.StockItem, created []*stock.Notification) {
	events := item.PullDomainEvents()
	if s.eventPublisher == nil {
		return
	}
	for _, e := range NotificationEvents(created) {
		events = append(events, e)
	}
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish stock events", zap.String("item_id", item.ID.String()), zap.Error(err))
	}
}

// publishNotifications publishes created events for notifications written outside the
// stock reconciliation, such as lab request workflow rows.
func (s *StockService) publishNotifications(ctx context.Context, created ...*stock.Notification) {
	if s.eventPublisher == nil || len(created) == 0 {
		return
	}
	for _, e := range NotificationEvents(created) {
		if err := s.eventPublisher.Publish(ctx, e); err != nil {
			s.logger.Error("failed to publish notification event", zap.String("notification_id", e.NotificationID.String()), zap.Error(err))
		}
	}
}

// notFound replaces the generic repository ErrNotFound with a message naming the missing
// record. Errors that already name their record pass through.
func notFound(err error, message string) error {
	var de *shared.DomainError
	if errors.As(err, &de) && de == shared.ErrNotFound {
		return shared.NewDomainError(shared.CodeNotFound, message)
	}
	return err
}

func (s *StockService) itemNotFound(err error) error {
	return notFound(err, s.desc.Singular()+" not found")
}

func (s *StockService) requireReturnable() error {
	if !s.desc.IsReturnable {
		return shared.NewDomainError("INVALID_OPERATION", s.desc.Label+" are not returnable")
	}
	return nil
}
