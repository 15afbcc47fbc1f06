package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/inventory"
	"github.com/stockbook/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// statementOrder sorts ledger rows the way statements display them: by
// date, opening rows first, then inflows before outflows, then insertion
// time as the tiebreaker.
const statementOrder = "entry_date ASC, CASE WHEN entry_type = 'OPENING' THEN 0 WHEN quantity_in > 0 THEN 1 ELSE 2 END ASC, created_at ASC"

// GormLedgerRepository implements LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append inserts ledger entries
func (r *GormLedgerRepository) Append(ctx context.Context, entries ...*inventory.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// BalanceAsOf computes sum(in) - sum(out) for a product within the scope
func (r *GormLedgerRepository) BalanceAsOf(ctx context.Context, tenantID, productID uuid.UUID, scope inventory.DateScope) (decimal.Decimal, error) {
	query := r.scoped(ctx, tenantID, scope).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity_in - quantity_out), 0)")

	var balance decimal.Decimal
	if err := query.Row().Scan(&balance); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// Range returns a product's entries within the scope in statement order
func (r *GormLedgerRepository) Range(ctx context.Context, tenantID, productID uuid.UUID, scope inventory.DateScope, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	query := r.scoped(ctx, tenantID, scope).
		Where("product_id = ?", productID).
		Order(statementOrder)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var entries []inventory.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// RangeAll returns every product's entries within the scope in statement order
func (r *GormLedgerRepository) RangeAll(ctx context.Context, tenantID uuid.UUID, scope inventory.DateScope, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	query := r.scoped(ctx, tenantID, scope).Order(statementOrder)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var entries []inventory.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByRelated returns all entries tied to a business record
func (r *GormLedgerRepository) FindByRelated(ctx context.Context, tenantID, relatedID uuid.UUID) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND related_id = ?", tenantID, relatedID).
		Order(statementOrder).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ExistsByRelatedAndType reports whether the business record already has
// entries of the given types
func (r *GormLedgerRepository) ExistsByRelatedAndType(ctx context.Context, tenantID, relatedID uuid.UUID, types ...inventory.EntryType) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
		Where("tenant_id = ? AND related_id = ?", tenantID, relatedID)
	if len(types) > 0 {
		query = query.Where("entry_type IN ?", entryTypeStrings(types))
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteByRelated removes all entries tied to a business record
func (r *GormLedgerRepository) DeleteByRelated(ctx context.Context, tenantID, relatedID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND related_id = ?", tenantID, relatedID).
		Delete(&inventory.LedgerEntry{}).Error
}

// DeleteByRelatedAndType removes a business record's entries of the given types
func (r *GormLedgerRepository) DeleteByRelatedAndType(ctx context.Context, tenantID, relatedID uuid.UUID, types ...inventory.EntryType) error {
	if len(types) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND related_id = ? AND entry_type IN ?", tenantID, relatedID, entryTypeStrings(types)).
		Delete(&inventory.LedgerEntry{}).Error
}

// DeleteByIDs removes specific entries by their IDs
func (r *GormLedgerRepository) DeleteByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Delete(&inventory.LedgerEntry{}).Error
}

// SummaryByProduct aggregates in/out totals per product within the scope
func (r *GormLedgerRepository) SummaryByProduct(ctx context.Context, tenantID uuid.UUID, scope inventory.DateScope) ([]inventory.StockSummaryRow, error) {
	var rows []inventory.StockSummaryRow
	query := r.scoped(ctx, tenantID, scope).
		Select("product_id, COALESCE(SUM(quantity_in), 0) AS total_in, COALESCE(SUM(quantity_out), 0) AS total_out, COUNT(*) AS entry_count").
		Group("product_id").
		Order("product_id")

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindOrphanedEntries returns manual production rows whose production log no
// longer exists
func (r *GormLedgerRepository) FindOrphanedEntries(ctx context.Context, tenantID uuid.UUID) ([]inventory.LedgerEntry, error) {
	productionTypes := []string{
		inventory.EntryTypeProductionIn.String(),
		inventory.EntryTypeProductionOut.String(),
	}
	logIDs := r.db.Model(&inventory.ProductionLog{}).
		Select("id").
		Where("tenant_id = ?", tenantID)

	var entries []inventory.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entry_type IN ? AND related_id IS NOT NULL AND related_id NOT IN (?)",
			tenantID, productionTypes, logIDs).
		Order(statementOrder).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountForProduct counts a product's entries within the scope
func (r *GormLedgerRepository) CountForProduct(ctx context.Context, tenantID, productID uuid.UUID, scope inventory.DateScope) (int64, error) {
	var count int64
	if err := r.scoped(ctx, tenantID, scope).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormLedgerRepository) scoped(ctx context.Context, tenantID uuid.UUID, scope inventory.DateScope) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).Where("tenant_id = ?", tenantID)
	if !scope.From.IsZero() {
		query = query.Where("entry_date >= ?", scope.From)
	}
	if !scope.To.IsZero() {
		query = query.Where("entry_date <= ?", scope.To)
	}
	return query
}

func entryTypeStrings(types []inventory.EntryType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, strings.ToUpper(t.String()))
	}
	return out
}

var _ inventory.LedgerRepository = (*GormLedgerRepository)(nil)
