package persistence

import (
	"context"

	appstock "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormTransactionScope implements appstock.TransactionScope with a GORM transaction.
// Every repository handed to fn shares the transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in a transaction, rolling back if it returns an error.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) ItemRepo() stock.StockItemRepository {
	return NewGormStockItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) RestockRepo() stock.RestockRepository {
	return NewGormRestockRepository(r.tx)
}

func (r *gormTransactionalRepositories) LogRepo() stock.IssueLogRepository {
	return NewGormIssueLogRepository(r.tx)
}

func (r *gormTransactionalRepositories) NotificationRepo() stock.NotificationRepository {
	return NewGormNotificationRepository(r.tx)
}

func (r *gormTransactionalRepositories) RequestRepo() procurement.LabRequestRepository {
	return NewGormLabRequestRepository(r.tx)
}

var _ appstock.TransactionScope = (*GormTransactionScope)(nil)
var _ appstock.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
