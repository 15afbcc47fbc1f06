package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/shared"
)

// DateScope bounds a ledger query by entry date. A zero From or To leaves
// that side open.
type DateScope struct {
	From time.Time
	To   time.Time
}

// ScopeUpTo returns a scope covering everything up to and including date
func ScopeUpTo(date time.Time) DateScope {
	return DateScope{To: date}
}

// ScopeAll returns an unbounded scope
func ScopeAll() DateScope {
	return DateScope{}
}

// StockSummaryRow is one product's aggregated ledger position
type StockSummaryRow struct {
	ProductID  uuid.UUID       `gorm:"column:product_id"`
	TotalIn    decimal.Decimal `gorm:"column:total_in"`
	TotalOut   decimal.Decimal `gorm:"column:total_out"`
	EntryCount int64           `gorm:"column:entry_count"`
}

// Balance returns the net position of the row
func (r StockSummaryRow) Balance() decimal.Decimal {
	return r.TotalIn.Sub(r.TotalOut)
}

// LedgerRepository defines the interface for stock ledger persistence.
// The ledger is append-only: rows are inserted and deleted by RelatedID,
// never updated in place.
type LedgerRepository interface {
	// Append inserts ledger entries
	Append(ctx context.Context, entries ...*LedgerEntry) error

	// BalanceAsOf computes sum(in) - sum(out) for a product within the scope
	BalanceAsOf(ctx context.Context, tenantID, productID uuid.UUID, scope DateScope) (decimal.Decimal, error)

	// Range returns a product's entries within the scope in statement order:
	// by date, OPENING rows first, then inflows before outflows, then by
	// insertion time
	Range(ctx context.Context, tenantID, productID uuid.UUID, scope DateScope, filter shared.Filter) ([]LedgerEntry, error)

	// RangeAll returns every product's entries within the scope in statement order
	RangeAll(ctx context.Context, tenantID uuid.UUID, scope DateScope, filter shared.Filter) ([]LedgerEntry, error)

	// FindByRelated returns all entries tied to a business record
	FindByRelated(ctx context.Context, tenantID, relatedID uuid.UUID) ([]LedgerEntry, error)

	// ExistsByRelatedAndType reports whether the business record already has
	// entries of the given types
	ExistsByRelatedAndType(ctx context.Context, tenantID, relatedID uuid.UUID, types ...EntryType) (bool, error)

	// DeleteByRelated removes all entries tied to a business record
	DeleteByRelated(ctx context.Context, tenantID, relatedID uuid.UUID) error

	// DeleteByRelatedAndType removes a business record's entries of the given types
	DeleteByRelatedAndType(ctx context.Context, tenantID, relatedID uuid.UUID, types ...EntryType) error

	// DeleteByIDs removes specific entries by their IDs
	DeleteByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error

	// SummaryByProduct aggregates in/out totals per product within the scope
	SummaryByProduct(ctx context.Context, tenantID uuid.UUID, scope DateScope) ([]StockSummaryRow, error)

	// FindOrphanedEntries returns entries whose RelatedID points at a
	// production log that no longer exists
	FindOrphanedEntries(ctx context.Context, tenantID uuid.UUID) ([]LedgerEntry, error)

	// CountForProduct counts a product's entries within the scope
	CountForProduct(ctx context.Context, tenantID, productID uuid.UUID, scope DateScope) (int64, error)
}

// FormulaRepository defines the interface for recipe persistence
type FormulaRepository interface {
	// FindByProduct returns a product's recipe lines
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]FormulaLine, error)

	// FindLine returns one recipe line by output and ingredient
	FindLine(ctx context.Context, tenantID, productID, ingredientID uuid.UUID) (*FormulaLine, error)

	// FindProductsUsing returns IDs of products whose recipe includes the ingredient
	FindProductsUsing(ctx context.Context, tenantID, ingredientID uuid.UUID) ([]uuid.UUID, error)

	// HasFormula reports whether the product has at least one recipe line
	HasFormula(ctx context.Context, tenantID, productID uuid.UUID) (bool, error)

	// Save creates or updates a recipe line
	Save(ctx context.Context, line *FormulaLine) error

	// Delete removes a recipe line
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// DeleteByProduct removes all recipe lines of an output product
	DeleteByProduct(ctx context.Context, tenantID, productID uuid.UUID) error
}

// ProductionLogRepository defines the interface for production log persistence
type ProductionLogRepository interface {
	// FindByID finds a production log with its items
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ProductionLog, error)

	// FindByProduct returns a product's production logs with items
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]ProductionLog, error)

	// FindManualByProduct returns only operator-entered logs for a product
	FindManualByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]ProductionLog, error)

	// FindBySale returns auto-production logs tied to a sale
	FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]ProductionLog, error)

	// Save creates or updates a log together with its items
	Save(ctx context.Context, log *ProductionLog) error

	// ReplaceItems swaps a log's ingredient draws for a fresh set
	ReplaceItems(ctx context.Context, log *ProductionLog, items []ProductionItem) error

	// Delete removes a log and its items
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
