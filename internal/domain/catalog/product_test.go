package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tenantID := uuid.New()

	product, err := NewProduct(tenantID, "wid-001", "Widget")
	require.NoError(t, err)
	assert.Equal(t, "WID-001", product.SKU)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, ProductStatusActive, product.Status)
	assert.True(t, product.CostPrice.IsZero())
}

func TestNewProduct_Validation(t *testing.T) {
	tenantID := uuid.New()

	_, err := NewProduct(tenantID, "", "Widget")
	assert.Error(t, err)

	_, err = NewProduct(tenantID, "SKU-1", "  ")
	assert.Error(t, err)
}

func TestProduct_SetPrices(t *testing.T) {
	product, err := NewProduct(uuid.New(), "SKU-1", "Widget")
	require.NoError(t, err)

	require.NoError(t, product.SetPrices(decimal.NewFromInt(60), decimal.NewFromInt(100)))
	assert.True(t, product.CostPrice.Equal(decimal.NewFromInt(60)))
	assert.True(t, product.SellingPrice.Equal(decimal.NewFromInt(100)))

	assert.Error(t, product.SetPrices(decimal.NewFromInt(-1), decimal.Zero))
	assert.Error(t, product.SetPrices(decimal.Zero, decimal.NewFromInt(-1)))
}

func TestProduct_SetTaxRate(t *testing.T) {
	product, err := NewProduct(uuid.New(), "SKU-1", "Widget")
	require.NoError(t, err)

	require.NoError(t, product.SetTaxRate(decimal.NewFromInt(18)))
	assert.True(t, product.TaxRate.Equal(decimal.NewFromInt(18)))

	assert.Error(t, product.SetTaxRate(decimal.NewFromInt(-5)))
}

func TestProduct_Deactivate(t *testing.T) {
	product, err := NewProduct(uuid.New(), "SKU-1", "Widget")
	require.NoError(t, err)

	assert.True(t, product.IsActive())
	product.Deactivate()
	assert.False(t, product.IsActive())
}
