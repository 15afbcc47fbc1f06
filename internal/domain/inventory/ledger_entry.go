package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/shared"
)

// EntryType represents the business event behind a stock ledger entry
type EntryType string

const (
	// EntryTypeOpening is the opening balance for a tracking period
	EntryTypeOpening EntryType = "OPENING"
	// EntryTypePurchase is stock received against a purchase invoice
	EntryTypePurchase EntryType = "PURCHASE"
	// EntryTypeSale is stock issued against a sales invoice
	EntryTypeSale EntryType = "SALE"
	// EntryTypeProduction is auto-production output triggered by a sale
	EntryTypeProduction EntryType = "PRODUCTION"
	// EntryTypeConsumption is the ingredient draw of auto-production
	EntryTypeConsumption EntryType = "CONSUMPTION"
	// EntryTypeProductionIn is the output of a manual production log
	EntryTypeProductionIn EntryType = "PRODUCTION_IN"
	// EntryTypeProductionOut is an ingredient input of a manual production log
	EntryTypeProductionOut EntryType = "PRODUCTION_OUT"
	// EntryTypeAdjustmentIn is a manual positive adjustment
	EntryTypeAdjustmentIn EntryType = "ADJUSTMENT_IN"
	// EntryTypeAdjustmentOut is a manual negative adjustment
	EntryTypeAdjustmentOut EntryType = "ADJUSTMENT_OUT"
	// EntryTypeTransferIn is stock received from a product-to-product transfer
	EntryTypeTransferIn EntryType = "TRANSFER_IN"
	// EntryTypeTransferOut is stock issued to a product-to-product transfer
	EntryTypeTransferOut EntryType = "TRANSFER_OUT"
)

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// IsValid returns true if the entry type is known
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeOpening,
		EntryTypePurchase,
		EntryTypeSale,
		EntryTypeProduction,
		EntryTypeConsumption,
		EntryTypeProductionIn,
		EntryTypeProductionOut,
		EntryTypeAdjustmentIn,
		EntryTypeAdjustmentOut,
		EntryTypeTransferIn,
		EntryTypeTransferOut:
		return true
	}
	return false
}

// IsInflow returns true if this entry type records quantity in
func (t EntryType) IsInflow() bool {
	switch t {
	case EntryTypeOpening,
		EntryTypePurchase,
		EntryTypeProduction,
		EntryTypeProductionIn,
		EntryTypeAdjustmentIn,
		EntryTypeTransferIn:
		return true
	}
	return false
}

// IsOutflow returns true if this entry type records quantity out
func (t EntryType) IsOutflow() bool {
	switch t {
	case EntryTypeSale,
		EntryTypeConsumption,
		EntryTypeProductionOut,
		EntryTypeAdjustmentOut,
		EntryTypeTransferOut:
		return true
	}
	return false
}

// LedgerEntry is one row of the stock ledger: an append-only record of a
// quantity movement in the product's primary unit. Rows are never mutated;
// editing or deleting the owning business record deletes its rows and, where
// needed, re-inserts fresh ones in the same transaction.
//
// TransUnit and TransConversionRate snapshot the unit math actually used to
// compute the quantity, so historical rows stay interpretable after a
// product's unit configuration is edited.
type LedgerEntry struct {
	shared.BaseEntity
	TenantID            uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_tenant_product_date,priority:1"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_tenant_product_date,priority:2"`
	EntryDate           time.Time       `gorm:"not null;index:idx_ledger_tenant_product_date,priority:3"`
	EntryType           EntryType       `gorm:"type:varchar(20);not null;index:idx_ledger_type"`
	QuantityIn          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityOut         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RelatedID           *uuid.UUID      `gorm:"type:uuid;index:idx_ledger_related"` // Originating sale/purchase/production-log/adjustment
	TransUnit           string          `gorm:"type:varchar(20)"`                   // Unit the quantity was entered in
	TransConversionRate decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1"`
	Remarks             string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "stock_ledger"
}

// NewInflowEntry creates a ledger entry recording quantity in
func NewInflowEntry(tenantID, productID uuid.UUID, entryType EntryType, date time.Time, qty decimal.Decimal) (*LedgerEntry, error) {
	if !entryType.IsInflow() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Entry type does not record quantity in")
	}
	return newLedgerEntry(tenantID, productID, entryType, date, qty, decimal.Zero)
}

// NewOutflowEntry creates a ledger entry recording quantity out
func NewOutflowEntry(tenantID, productID uuid.UUID, entryType EntryType, date time.Time, qty decimal.Decimal) (*LedgerEntry, error) {
	if !entryType.IsOutflow() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Entry type does not record quantity out")
	}
	return newLedgerEntry(tenantID, productID, entryType, date, decimal.Zero, qty)
}

func newLedgerEntry(tenantID, productID uuid.UUID, entryType EntryType, date time.Time, in, out decimal.Decimal) (*LedgerEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Invalid entry type")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Entry date cannot be empty")
	}
	qty := in
	if qty.IsZero() {
		qty = out
	}
	if qty.IsNegative() || qty.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	return &LedgerEntry{
		BaseEntity:          shared.NewBaseEntity(),
		TenantID:            tenantID,
		ProductID:           productID,
		EntryDate:           date,
		EntryType:           entryType,
		QuantityIn:          in,
		QuantityOut:         out,
		TransConversionRate: decimal.NewFromInt(1),
	}, nil
}

// WithRelated ties the entry to its originating business record
func (e *LedgerEntry) WithRelated(relatedID uuid.UUID) *LedgerEntry {
	e.RelatedID = &relatedID
	return e
}

// WithConversion snapshots the unit and rate used to compute the quantity
func (e *LedgerEntry) WithConversion(unit string, rate decimal.Decimal) *LedgerEntry {
	e.TransUnit = unit
	e.TransConversionRate = rate
	return e
}

// WithRemarks attaches a free-form note
func (e *LedgerEntry) WithRemarks(remarks string) *LedgerEntry {
	e.Remarks = remarks
	return e
}

// SignedQuantity returns the net quantity change of this entry
func (e *LedgerEntry) SignedQuantity() decimal.Decimal {
	return e.QuantityIn.Sub(e.QuantityOut)
}
