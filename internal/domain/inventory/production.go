package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/shared"
)

// ProductionSource distinguishes who created a production log
type ProductionSource string

const (
	// ProductionSourceManual is an operator-entered production log
	ProductionSourceManual ProductionSource = "MANUAL"
	// ProductionSourceAuto is a log created by the auto-production engine
	ProductionSourceAuto ProductionSource = "AUTO"
)

// ProductionLog records one production run: a quantity of an output product
// made on a date, with the ingredient draws captured as items. Its ledger
// footprint is written separately and keyed back via RelatedID.
type ProductionLog struct {
	shared.TenantAggregateRoot
	ProductID uuid.UUID        `gorm:"type:uuid;not null;index:idx_production_tenant_product"`
	Quantity  decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	LogDate   time.Time        `gorm:"not null;index"`
	Source    ProductionSource `gorm:"type:varchar(10);not null;default:'MANUAL'"`
	SaleID    *uuid.UUID       `gorm:"type:uuid;index"` // Triggering sale for AUTO logs
	Remarks   string           `gorm:"type:varchar(255)"`
	Items     []ProductionItem `gorm:"foreignKey:ProductionLogID"`
}

// ProductionItem is one ingredient draw of a production run, snapshotted in
// the ingredient's primary unit alongside the quantity and unit it was
// entered in.
type ProductionItem struct {
	shared.BaseEntity
	ProductionLogID uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Primary-unit quantity
	EnteredQty      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EnteredUnit     string          `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (ProductionLog) TableName() string {
	return "production_logs"
}

// TableName returns the table name for GORM
func (ProductionItem) TableName() string {
	return "production_items"
}

// NewProductionLog creates a production log for an output product
func NewProductionLog(tenantID, productID uuid.UUID, qty decimal.Decimal, logDate time.Time, source ProductionSource) (*ProductionLog, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if qty.IsZero() || qty.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Production quantity must be positive")
	}
	if logDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Production date cannot be empty")
	}
	if source != ProductionSourceManual && source != ProductionSourceAuto {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Invalid production source")
	}

	log := &ProductionLog{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		Quantity:            qty,
		LogDate:             logDate,
		Source:              source,
	}
	log.AddDomainEvent(NewProductionRecordedEvent(log.ID, tenantID, productID, qty, source))
	return log, nil
}

// LinkSale ties an auto-production log to its triggering sale
func (p *ProductionLog) LinkSale(saleID uuid.UUID) {
	p.SaleID = &saleID
}

// AddItem appends an ingredient draw to the run
func (p *ProductionLog) AddItem(ingredientID uuid.UUID, primaryQty, enteredQty decimal.Decimal, enteredUnit string) error {
	if ingredientID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Ingredient ID cannot be empty")
	}
	if primaryQty.IsZero() || primaryQty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Ingredient quantity must be positive")
	}
	p.Items = append(p.Items, ProductionItem{
		BaseEntity:      shared.NewBaseEntity(),
		ProductionLogID: p.ID,
		IngredientID:    ingredientID,
		Quantity:        primaryQty,
		EnteredQty:      enteredQty,
		EnteredUnit:     enteredUnit,
	})
	return nil
}

// IsManual returns true for operator-entered logs
func (p *ProductionLog) IsManual() bool {
	return p.Source == ProductionSourceManual
}
