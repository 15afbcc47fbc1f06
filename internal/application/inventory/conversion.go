package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/catalog"
	"github.com/stockbook/backend/internal/domain/inventory"
	"github.com/stockbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// quantityScale is the storage scale of ledger quantities
const quantityScale = 4

// convertedQuantity is an entered quantity resolved into a product's
// primary unit, together with the audit snapshot for the ledger row.
type convertedQuantity struct {
	BaseQty     decimal.Decimal
	EnteredQty  decimal.Decimal
	EnteredUnit string
	Rate        decimal.Decimal
}

// resolveEnteredQuantity converts a quantity entered in the given unit mode
// into the product's primary unit. An empty mode means primary. When the
// primary/secondary pair cannot be classified, the resolver falls back to
// multiplication and the caller's logger records the fallback.
func resolveEnteredQuantity(product *catalog.Product, qty decimal.Decimal, mode inventory.UnitMode, logger *zap.Logger) (convertedQuantity, error) {
	if qty.IsZero() || qty.IsNegative() {
		return convertedQuantity{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if mode == "" {
		mode = inventory.UnitModePrimary
	}

	if mode == inventory.UnitModePrimary {
		return convertedQuantity{
			BaseQty:     qty.Round(quantityScale),
			EnteredQty:  qty,
			EnteredUnit: product.Unit,
			Rate:        decimal.NewFromInt(1),
		}, nil
	}

	if !product.HasDualUnits {
		return convertedQuantity{}, shared.ErrUnitNotConfigured
	}
	if err := product.ValidateUnitConfig(); err != nil {
		return convertedQuantity{}, err
	}

	direction, ambiguous := inventory.ResolveDirection(product.Unit, product.SecondaryUnit)
	if ambiguous && logger != nil {
		logger.Warn("unit pair could not be classified, falling back to multiplication",
			zap.String("product_id", product.ID.String()),
			zap.String("primary_unit", product.Unit),
			zap.String("secondary_unit", product.SecondaryUnit),
		)
	}

	base, err := inventory.ToBaseQuantity(qty, direction, product.ConversionRate)
	if err != nil {
		return convertedQuantity{}, err
	}

	return convertedQuantity{
		BaseQty:     base.Round(quantityScale),
		EnteredQty:  qty,
		EnteredUnit: product.SecondaryUnit,
		Rate:        product.ConversionRate,
	}, nil
}

// resolveIngredientDraw resolves a recipe line's scaled quantity into the
// ingredient's primary unit. Ingredients kept in a discrete unit and without
// a dual-unit setup cannot be consumed fractionally, so the resolved
// quantity is rounded up to a whole number.
func resolveIngredientDraw(ingredient *catalog.Product, qty decimal.Decimal, mode inventory.UnitMode, logger *zap.Logger) (convertedQuantity, error) {
	converted, err := resolveEnteredQuantity(ingredient, qty, mode, logger)
	if err != nil {
		return convertedQuantity{}, err
	}
	if !inventory.AllowsFractions(ingredient.Unit) && !ingredient.HasDualUnits {
		converted.BaseQty = converted.BaseQty.Ceil()
	}
	return converted, nil
}
