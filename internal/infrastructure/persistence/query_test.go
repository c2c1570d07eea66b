package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/labstock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestSortSpec_Clause(t *testing.T) {
	tests := []struct {
		name  string
		field string
		dir   string
		want  string
	}{
		{"empty field uses the default order", "", "", "stock_items.item_code ASC"},
		{"allowed field descending by default", "current_quantity", "", "stock_items.current_quantity DESC"},
		{"asc is case insensitive", "item_name", " Asc ", "stock_items.item_name ASC"},
		{"unknown direction is descending", "status", "sideways", "stock_items.status DESC"},
		{"unknown field uses the default order", "password", "asc", "stock_items.item_code ASC"},
		{"field names are case sensitive", "ITEM_NAME", "asc", "stock_items.item_code ASC"},
		{"injection in field", "item_code; DROP TABLE stock_items;--", "asc", "stock_items.item_code ASC"},
		{"injection in direction", "item_code", "ASC; DROP TABLE stock_items", "stock_items.item_code DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stockItemSort.clause(tt.field, tt.dir))
		})
	}
}

func TestSortSpecs_AllowCreatedAt(t *testing.T) {
	for _, spec := range []sortSpec{stockItemSort, restockSort, issueLogSort, inwardSort} {
		assert.True(t, spec.columns["created_at"], spec.table)
		assert.Contains(t, spec.fallback, spec.table+".")
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(fmt.Errorf("find: %w", gorm.ErrRecordNotFound)), shared.ErrNotFound)
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), shared.ErrAlreadyExists)

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
}
