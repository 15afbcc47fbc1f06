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

	t.Run("creates product with valid inputs", func(t *testing.T) {
		product, err := NewProduct(tenantID, "LG-001", "Liquid Gum", "BAG")
		require.NoError(t, err)
		require.NotNil(t, product)

		assert.Equal(t, tenantID, product.TenantID)
		assert.Equal(t, "LG-001", product.Code)
		assert.Equal(t, "Liquid Gum", product.Name)
		assert.Equal(t, "BAG", product.Unit)
		assert.True(t, product.MaintainStock)
		assert.False(t, product.HasDualUnits)
		assert.True(t, product.ConversionRate.IsZero())
		assert.True(t, product.FormulaBaseQty.Equal(decimal.NewFromInt(1)))
		assert.Equal(t, ProductStatusActive, product.Status)
		assert.NotEmpty(t, product.ID)
		assert.Equal(t, 1, product.GetVersion())
	})

	t.Run("converts code to uppercase", func(t *testing.T) {
		product, err := NewProduct(tenantID, "lg-001", "Liquid Gum", "BAG")
		require.NoError(t, err)
		assert.Equal(t, "LG-001", product.Code)
	})

	t.Run("publishes ProductCreated event", func(t *testing.T) {
		product, err := NewProduct(tenantID, "LG-002", "Liquid Gum", "BAG")
		require.NoError(t, err)

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewProduct(tenantID, "", "Liquid Gum", "BAG")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "code cannot be empty")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct(tenantID, "LG-001", "", "BAG")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with empty unit", func(t *testing.T) {
		_, err := NewProduct(tenantID, "LG-001", "Liquid Gum", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unit cannot be empty")
	})
}

func TestProduct_ConfigureDualUnits(t *testing.T) {
	tenantID := uuid.New()

	newProduct := func(t *testing.T) *Product {
		product, err := NewProduct(tenantID, "PVA-001", "PVA", "BAG")
		require.NoError(t, err)
		product.ClearDomainEvents()
		return product
	}

	t.Run("enables secondary unit with rate", func(t *testing.T) {
		product := newProduct(t)

		err := product.ConfigureDualUnits("KGS", decimal.NewFromInt(20))
		require.NoError(t, err)

		assert.True(t, product.HasDualUnits)
		assert.Equal(t, "KGS", product.SecondaryUnit)
		assert.True(t, product.ConversionRate.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, 2, product.GetVersion())

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductUnitsConfigured, events[0].EventType())
	})

	t.Run("rejects empty secondary unit", func(t *testing.T) {
		product := newProduct(t)

		err := product.ConfigureDualUnits("", decimal.NewFromInt(20))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Secondary unit is required")
	})

	t.Run("rejects zero conversion rate", func(t *testing.T) {
		product := newProduct(t)

		err := product.ConfigureDualUnits("KGS", decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Conversion rate must be positive")
	})

	t.Run("rejects negative conversion rate", func(t *testing.T) {
		product := newProduct(t)

		err := product.ConfigureDualUnits("KGS", decimal.NewFromInt(-5))
		require.Error(t, err)
	})

	t.Run("clear resets the configuration", func(t *testing.T) {
		product := newProduct(t)
		require.NoError(t, product.ConfigureDualUnits("KGS", decimal.NewFromInt(20)))

		product.ClearDualUnits()

		assert.False(t, product.HasDualUnits)
		assert.Empty(t, product.SecondaryUnit)
		assert.True(t, product.ConversionRate.IsZero())
	})
}

func TestProduct_SetFormulaBaseQty(t *testing.T) {
	tenantID := uuid.New()

	t.Run("sets batch size", func(t *testing.T) {
		product, err := NewProduct(tenantID, "LG-001", "Liquid Gum", "BAG")
		require.NoError(t, err)

		err = product.SetFormulaBaseQty(decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.True(t, product.FormulaBaseQty.Equal(decimal.NewFromInt(10)))
	})

	t.Run("rejects non-positive batch size", func(t *testing.T) {
		product, err := NewProduct(tenantID, "LG-001", "Liquid Gum", "BAG")
		require.NoError(t, err)

		err = product.SetFormulaBaseQty(decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})
}

func TestProduct_ValidateUnitConfig(t *testing.T) {
	tenantID := uuid.New()

	t.Run("passes for single-unit product", func(t *testing.T) {
		product, err := NewProduct(tenantID, "LG-001", "Liquid Gum", "BAG")
		require.NoError(t, err)
		assert.NoError(t, product.ValidateUnitConfig())
	})

	t.Run("catches a dual-unit product without a rate", func(t *testing.T) {
		product, err := NewProduct(tenantID, "PVA-001", "PVA", "BAG")
		require.NoError(t, err)

		// Simulate a row persisted before eager validation existed.
		product.HasDualUnits = true
		product.SecondaryUnit = "KGS"
		product.ConversionRate = decimal.Zero

		err = product.ValidateUnitConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Conversion rate must be positive")
	})
}
