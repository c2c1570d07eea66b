package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Equipments ")
	require.NoError(t, err)
	assert.Equal(t, CategoryEquipments, c)

	_, err = ParseCategory("furniture")
	require.Error(t, err)
}

func TestDescriptors(t *testing.T) {
	assert.Len(t, AllCategories(), 6)
	assert.ElementsMatch(t,
		[]Category{CategoryChemicals, CategoryConsumables, CategoryEquipments, CategoryOthers},
		ExpiryCategories())

	eq := MustDescriptor(CategoryEquipments)
	assert.True(t, eq.IsReturnable)
	assert.True(t, eq.HasMaintenance)
	assert.Equal(t, "Equipment", eq.Singular())

	assert.True(t, MustDescriptor(CategoryGlasswares).IsReturnable)
	assert.False(t, MustDescriptor(CategoryBooks).IsReturnable)
	assert.True(t, MustDescriptor(CategoryChemicals).RequiresHazardData)
	assert.Panics(t, func() { MustDescriptor(Category("furniture")) })
}
