package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with every table migrated.
// One connection keeps the in-memory database shared across queries.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// newMockDB opens GORM over sqlmock with the postgres dialector.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func newTestItem(t *testing.T, category stock.Category, code, name string, current, minLevel int64) *stock.StockItem {
	t.Helper()
	desc := stock.MustDescriptor(category)
	item, err := stock.NewStockItem(desc, code, stock.ItemDetails{
		ItemName:      name,
		Company:       "Merck",
		UnitOfMeasure: "ml",
		CasNo:         "64-17-5",
		MinStockLevel: decimal.NewFromInt(minLevel),
	}, "admin@lab.test")
	require.NoError(t, err)
	item.TotalQuantity = decimal.NewFromInt(current)
	item.CurrentQuantity = decimal.NewFromInt(current)
	item.Status = stock.StatusOf(item.CurrentQuantity, item.MinStockLevel)
	item.ClearDomainEvents()
	return item
}

func newTestRestock(t *testing.T, item *stock.StockItem, quantity int64, expires *time.Time) *stock.RestockRecord {
	t.Helper()
	r, err := stock.NewRestockRecord(stock.MustDescriptor(item.Category), item.ID, uuid.New(),
		decimal.NewFromInt(quantity), stock.RestockDetails{ExpirationDate: expires, Location: "Shelf A"}, "admin@lab.test")
	require.NoError(t, err)
	return r
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
