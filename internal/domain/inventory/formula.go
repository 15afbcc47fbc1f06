package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/shared"
)

// UnitMode declares which of the ingredient's units a formula line's
// quantity is expressed in
type UnitMode string

const (
	// UnitModePrimary means the line quantity is in the ingredient's primary unit
	UnitModePrimary UnitMode = "PRIMARY"
	// UnitModeSecondary means the line quantity is in the ingredient's secondary unit
	UnitModeSecondary UnitMode = "SECONDARY"
)

// IsValid returns true if the unit mode is known
func (m UnitMode) IsValid() bool {
	return m == UnitModePrimary || m == UnitModeSecondary
}

// FormulaLine is one ingredient of a product's recipe. The line quantity is
// what the recipe consumes to produce FormulaBaseQty units of the output
// product, expressed per UnitMode.
type FormulaLine struct {
	shared.BaseEntity
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_formula_output_ingredient,priority:1"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_formula_output_ingredient,priority:2"` // Output product
	IngredientID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_formula_output_ingredient,priority:3"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitMode     UnitMode        `gorm:"type:varchar(10);not null;default:'PRIMARY'"`
}

// TableName returns the table name for GORM
func (FormulaLine) TableName() string {
	return "formula_lines"
}

// NewFormulaLine creates a formula line for an output product
func NewFormulaLine(tenantID, productID, ingredientID uuid.UUID, qty decimal.Decimal, mode UnitMode) (*FormulaLine, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if productID == uuid.Nil || ingredientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productID == ingredientID {
		return nil, shared.NewDomainError("SELF_REFERENCE", "A product cannot be its own ingredient")
	}
	if qty.IsZero() || qty.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ingredient quantity must be positive")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_UNIT_MODE", "Unit mode must be PRIMARY or SECONDARY")
	}

	return &FormulaLine{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     tenantID,
		ProductID:    productID,
		IngredientID: ingredientID,
		Quantity:     qty,
		UnitMode:     mode,
	}, nil
}

// UpdateQuantity replaces the line quantity and unit mode
func (l *FormulaLine) UpdateQuantity(qty decimal.Decimal, mode UnitMode) error {
	if qty.IsZero() || qty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Ingredient quantity must be positive")
	}
	if !mode.IsValid() {
		return shared.NewDomainError("INVALID_UNIT_MODE", "Unit mode must be PRIMARY or SECONDARY")
	}
	l.Quantity = qty
	l.UnitMode = mode
	l.UpdatedAt = time.Now()
	return nil
}
