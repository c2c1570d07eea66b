package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStockItemRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStockItemRepository(newTestDB(t))

	item := newTestItem(t, stock.CategoryChemicals, "ETH-1001", "Ethanol", 10, 2)
	require.NoError(t, repo.Save(ctx, item))

	t.Run("by id within category", func(t *testing.T) {
		found, err := repo.FindByID(ctx, stock.CategoryChemicals, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "ETH-1001", found.ItemCode)
		assert.True(t, decimal.NewFromInt(10).Equal(found.CurrentQuantity))
		assert.Equal(t, stock.StatusInStock, found.Status)
		assert.Equal(t, 1, found.Version)
	})

	t.Run("by id in another category is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, stock.CategoryBooks, item.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("by code", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, stock.CategoryChemicals, "ETH-1001")
		require.NoError(t, err)
		assert.Equal(t, item.ID, found.ID)
	})

	t.Run("by name ignores case", func(t *testing.T) {
		found, err := repo.FindByName(ctx, stock.CategoryChemicals, "ETHANOL")
		require.NoError(t, err)
		assert.Equal(t, item.ID, found.ID)
	})

	t.Run("duplicate code in the same category", func(t *testing.T) {
		dup := newTestItem(t, stock.CategoryChemicals, "ETH-1001", "Ethanol 2", 1, 0)
		assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("same code in another category", func(t *testing.T) {
		other := newTestItem(t, stock.CategoryOthers, "ETH-1001", "Ethernet cable", 1, 0)
		assert.NoError(t, repo.Save(ctx, other))
	})

	t.Run("by ids skips unknown ids", func(t *testing.T) {
		items, err := repo.FindByIDs(ctx, []uuid.UUID{item.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestGormStockItemRepository_FindAllAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStockItemRepository(newTestDB(t))

	for _, it := range []*stock.StockItem{
		newTestItem(t, stock.CategoryChemicals, "SOD-1001", "Sodium chloride", 0, 5),
		newTestItem(t, stock.CategoryChemicals, "ACE-1001", "Acetone", 3, 5),
		newTestItem(t, stock.CategoryChemicals, "ACE-1002", "Acetic acid", 50, 5),
		newTestItem(t, stock.CategoryBooks, "ORG-1001", "Organic chemistry", 2, 0),
	} {
		require.NoError(t, repo.Save(ctx, it))
	}

	t.Run("orders by item code within category", func(t *testing.T) {
		items, err := repo.FindAll(ctx, stock.ItemFilter{Filter: shared.DefaultFilter(), Category: stock.CategoryChemicals})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, []string{"ACE-1001", "ACE-1002", "SOD-1001"}, []string{items[0].ItemCode, items[1].ItemCode, items[2].ItemCode})
	})

	t.Run("substring filters ignore case", func(t *testing.T) {
		filter := stock.ItemFilter{Filter: shared.DefaultFilter(), Category: stock.CategoryChemicals, ItemName: "ACE"}
		items, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, items, 2)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("status filter", func(t *testing.T) {
		items, err := repo.FindAll(ctx, stock.ItemFilter{Filter: shared.DefaultFilter(), Status: stock.StatusOutOfStock})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "SOD-1001", items[0].ItemCode)
	})

	t.Run("like wildcards are literal", func(t *testing.T) {
		count, err := repo.Count(ctx, stock.ItemFilter{ItemName: "%"})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("pagination", func(t *testing.T) {
		items, err := repo.FindAll(ctx, stock.ItemFilter{Filter: shared.Filter{Page: 2, PageSize: 2}, Category: stock.CategoryChemicals})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "SOD-1001", items[0].ItemCode)
	})

	t.Run("codes with prefix", func(t *testing.T) {
		codes, err := repo.CodesWithPrefix(ctx, stock.CategoryChemicals, "ACE")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"ACE-1001", "ACE-1002"}, codes)
	})

	t.Run("list by category", func(t *testing.T) {
		items, err := repo.ListByCategory(ctx, stock.CategoryBooks)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestGormStockItemRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStockItemRepository(newTestDB(t))

	item := newTestItem(t, stock.CategoryGlasswares, "BEA-1001", "Beaker", 10, 2)
	require.NoError(t, repo.Save(ctx, item))

	first, err := repo.FindByID(ctx, stock.CategoryGlasswares, item.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, stock.CategoryGlasswares, item.ID)
	require.NoError(t, err)

	require.NoError(t, first.Issue(decimal.NewFromInt(9)))
	require.NoError(t, repo.SaveWithLock(ctx, first))
	assert.Equal(t, 2, first.Version)

	require.NoError(t, second.Issue(decimal.NewFromInt(1)))
	err = repo.SaveWithLock(ctx, second)
	assert.ErrorIs(t, err, shared.ErrOptimisticLock)

	stored, err := repo.FindByID(ctx, stock.CategoryGlasswares, item.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1).Equal(stored.CurrentQuantity))
	assert.Equal(t, stock.StatusLowStock, stored.Status)
	assert.Equal(t, 2, stored.Version)
}

func TestGormStockItemRepository_SaveWithLock_SQL(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormStockItemRepository(db)

	item := newTestItem(t, stock.CategoryChemicals, "ETH-1001", "Ethanol", 10, 2)
	mock.ExpectExec(`UPDATE "stock_items" SET .* WHERE id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveWithLock(context.Background(), item)
	assert.ErrorIs(t, err, shared.ErrOptimisticLock)
	assert.Equal(t, 1, item.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStockItemRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStockItemRepository(newTestDB(t))

	item := newTestItem(t, stock.CategoryOthers, "TAP-1001", "Tape", 1, 0)
	require.NoError(t, repo.Save(ctx, item))

	require.NoError(t, repo.Delete(ctx, item.ID))
	assert.ErrorIs(t, repo.Delete(ctx, item.ID), shared.ErrNotFound)
}
