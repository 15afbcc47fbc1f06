package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents an item in the product master.
// It is the aggregate root for product configuration: the primary (packing)
// unit every ledger quantity is stored in, the optional secondary unit with
// its conversion rate, and the batch size formulas are defined against.
type Product struct {
	shared.TenantAggregateRoot
	Code           string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Unit           string          `gorm:"type:varchar(20);not null"`             // Primary/packing unit (e.g., "BAG", "KGS")
	MaintainStock  bool            `gorm:"not null;default:true"`                 // When false the product never touches the ledger
	HasDualUnits   bool            `gorm:"not null;default:false"`
	SecondaryUnit  string          `gorm:"type:varchar(20)"`                      // Alternate input unit (e.g., "KGS" for a "BAG" product)
	ConversionRate decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"` // Secondary units per one primary unit
	FormulaBaseQty decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"` // Batch size formula quantities are expressed per
	Status         ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with the given primary unit
func NewProduct(tenantID uuid.UUID, code, name, unit string) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Unit:                unit,
		MaintainStock:       true,
		ConversionRate:      decimal.Zero,
		FormulaBaseQty:      decimal.NewFromInt(1),
		Status:              ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// ConfigureDualUnits enables the secondary unit with the given conversion
// rate (secondary units per one primary unit). Misconfiguration is rejected
// here so that it can never surface later in the middle of a calculation.
func (p *Product) ConfigureDualUnits(secondaryUnit string, conversionRate decimal.Decimal) error {
	if strings.TrimSpace(secondaryUnit) == "" {
		return shared.NewDomainError("INVALID_SECONDARY_UNIT", "Secondary unit is required for dual-unit products")
	}
	if conversionRate.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_CONVERSION_RATE", "Conversion rate must be positive")
	}

	p.HasDualUnits = true
	p.SecondaryUnit = secondaryUnit
	p.ConversionRate = conversionRate
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUnitsConfiguredEvent(p))

	return nil
}

// ClearDualUnits disables the secondary unit
func (p *Product) ClearDualUnits() {
	p.HasDualUnits = false
	p.SecondaryUnit = ""
	p.ConversionRate = decimal.Zero
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUnitsConfiguredEvent(p))
}

// SetFormulaBaseQty updates the batch size that formula line quantities are
// interpreted against. It does not touch already-recorded production.
func (p *Product) SetFormulaBaseQty(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_BATCH_SIZE", "Formula base quantity must be positive")
	}

	p.FormulaBaseQty = qty
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetMaintainStock toggles ledger tracking for the product
func (p *Product) SetMaintainStock(maintain bool) {
	p.MaintainStock = maintain
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate marks the product as inactive
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// ValidateUnitConfig re-checks the unit invariants. Persisted rows written
// by older versions of the application may predate eager validation.
func (p *Product) ValidateUnitConfig() error {
	if !p.HasDualUnits {
		return nil
	}
	if strings.TrimSpace(p.SecondaryUnit) == "" {
		return shared.NewDomainError("INVALID_SECONDARY_UNIT", "Secondary unit is required for dual-unit products")
	}
	if p.ConversionRate.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_CONVERSION_RATE", "Conversion rate must be positive")
	}
	return nil
}

func validateProductCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateUnit(unit string) error {
	if strings.TrimSpace(unit) == "" {
		return shared.NewDomainError("INVALID_UNIT", "Product unit cannot be empty")
	}
	return nil
}
