package stock

import (
	"context"

	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/stock"
)

// TransactionScope runs a unit of work over the stock repositories.
// If fn returns an error, every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the stock repositories bound to one transaction,
// plus the lab requests that issues are recorded against.
type TransactionalRepositories interface {
	ItemRepo() stock.StockItemRepository
	RestockRepo() stock.RestockRepository
	LogRepo() stock.IssueLogRepository
	NotificationRepo() stock.NotificationRepository
	RequestRepo() procurement.LabRequestRepository
}

// NoOpTransactionScope runs the function directly against the given repositories.
// It is used by tests and by stores without transaction support.
type NoOpTransactionScope struct {
	itemRepo         stock.StockItemRepository
	restockRepo      stock.RestockRepository
	logRepo          stock.IssueLogRepository
	notificationRepo stock.NotificationRepository
	requestRepo      procurement.LabRequestRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope.
func NewNoOpTransactionScope(
	itemRepo stock.StockItemRepository,
	restockRepo stock.RestockRepository,
	logRepo stock.IssueLogRepository,
	notificationRepo stock.NotificationRepository,
	requestRepo procurement.LabRequestRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		itemRepo:         itemRepo,
		restockRepo:      restockRepo,
		logRepo:          logRepo,
		notificationRepo: notificationRepo,
		requestRepo:      requestRepo,
	}
}

// Execute runs fn without a transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ItemRepo returns the item repository.
func (s *NoOpTransactionScope) ItemRepo() stock.StockItemRepository {
	return s.itemRepo
}

// RestockRepo returns the restock repository.
func (s *NoOpTransactionScope) RestockRepo() stock.RestockRepository {
	return s.restockRepo
}

// LogRepo returns the issue log repository.
func (s *NoOpTransactionScope) LogRepo() stock.IssueLogRepository {
	return s.logRepo
}

// NotificationRepo returns the notification repository.
func (s *NoOpTransactionScope) NotificationRepo() stock.NotificationRepository {
	return s.notificationRepo
}

// RequestRepo returns the lab request repository.
func (s *NoOpTransactionScope) RequestRepo() procurement.LabRequestRepository {
	return s.requestRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
