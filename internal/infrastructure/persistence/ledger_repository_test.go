package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stockbook/backend/internal/domain/inventory"
	"github.com/stockbook/backend/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLedgerRepo(t *testing.T) (*GormLedgerRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))
	return NewGormLedgerRepository(db), db
}

func mustInflow(t *testing.T, tenantID, productID uuid.UUID, entryType inventory.EntryType, date time.Time, qty int64) *inventory.LedgerEntry {
	t.Helper()
	entry, err := inventory.NewInflowEntry(tenantID, productID, entryType, date, decimal.NewFromInt(qty))
	require.NoError(t, err)
	return entry
}

func mustOutflow(t *testing.T, tenantID, productID uuid.UUID, entryType inventory.EntryType, date time.Time, qty int64) *inventory.LedgerEntry {
	t.Helper()
	entry, err := inventory.NewOutflowEntry(tenantID, productID, entryType, date, decimal.NewFromInt(qty))
	require.NoError(t, err)
	return entry
}

func TestGormLedgerRepository_StatementOrder(t *testing.T) {
	repo, _ := setupLedgerRepo(t)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// Insert in the wrong display order: outflow, inflow, opening, all on
	// the same date.
	sale := mustOutflow(t, tenantID, productID, inventory.EntryTypeSale, date, 3)
	purchase := mustInflow(t, tenantID, productID, inventory.EntryTypePurchase, date, 5)
	opening := mustInflow(t, tenantID, productID, inventory.EntryTypeOpening, date, 10)
	require.NoError(t, repo.Append(ctx, sale))
	require.NoError(t, repo.Append(ctx, purchase))
	require.NoError(t, repo.Append(ctx, opening))

	entries, err := repo.Range(ctx, tenantID, productID, inventory.ScopeAll(), shared.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, inventory.EntryTypeOpening, entries[0].EntryType)
	assert.Equal(t, inventory.EntryTypePurchase, entries[1].EntryType)
	assert.Equal(t, inventory.EntryTypeSale, entries[2].EntryType)
}

func TestGormLedgerRepository_RangeAll(t *testing.T) {
	repo, _ := setupLedgerRepo(t)
	ctx := context.Background()
	tenantID := uuid.New()
	first := uuid.New()
	second := uuid.New()
	day1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx,
		mustOutflow(t, tenantID, first, inventory.EntryTypeSale, day2, 4),
		mustInflow(t, tenantID, second, inventory.EntryTypePurchase, day1, 7),
		mustInflow(t, tenantID, first, inventory.EntryTypeOpening, day1, 10),
	))

	entries, err := repo.RangeAll(ctx, tenantID, inventory.ScopeAll(), shared.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Statement order holds across products: opening first within a day,
	// later dates last.
	assert.Equal(t, inventory.EntryTypeOpening, entries[0].EntryType)
	assert.Equal(t, first, entries[0].ProductID)
	assert.Equal(t, inventory.EntryTypePurchase, entries[1].EntryType)
	assert.Equal(t, second, entries[1].ProductID)
	assert.Equal(t, inventory.EntryTypeSale, entries[2].EntryType)

	t.Run("pagination applies", func(t *testing.T) {
		page, err := repo.RangeAll(ctx, tenantID, inventory.ScopeAll(), shared.Filter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, page, 2)
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		entries, err := repo.RangeAll(ctx, uuid.New(), inventory.ScopeAll(), shared.Filter{})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestGormLedgerRepository_BalanceAsOf(t *testing.T) {
	repo, _ := setupLedgerRepo(t)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()

	day1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx,
		mustInflow(t, tenantID, productID, inventory.EntryTypeOpening, day1, 10),
		mustOutflow(t, tenantID, productID, inventory.EntryTypeSale, day2, 4),
	))

	t.Run("all time", func(t *testing.T) {
		balance, err := repo.BalanceAsOf(ctx, tenantID, productID, inventory.ScopeAll())
		require.NoError(t, err)
		assert.Equal(t, "6", balance.String())
	})

	t.Run("cutoff excludes later entries", func(t *testing.T) {
		balance, err := repo.BalanceAsOf(ctx, tenantID, productID, inventory.ScopeUpTo(day1))
		require.NoError(t, err)
		assert.Equal(t, "10", balance.String())
	})

	t.Run("empty ledger is zero", func(t *testing.T) {
		balance, err := repo.BalanceAsOf(ctx, tenantID, uuid.New(), inventory.ScopeAll())
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		balance, err := repo.BalanceAsOf(ctx, uuid.New(), productID, inventory.ScopeAll())
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})
}

func TestGormLedgerRepository_DeleteByRelatedAndType(t *testing.T) {
	repo, _ := setupLedgerRepo(t)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	saleID := uuid.New()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx,
		mustOutflow(t, tenantID, productID, inventory.EntryTypeSale, date, 4).WithRelated(saleID),
		mustInflow(t, tenantID, productID, inventory.EntryTypeProduction, date, 4).WithRelated(saleID),
	))

	require.NoError(t, repo.DeleteByRelatedAndType(ctx, tenantID, saleID, inventory.EntryTypeProduction))

	entries, err := repo.FindByRelated(ctx, tenantID, saleID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, inventory.EntryTypeSale, entries[0].EntryType)

	exists, err := repo.ExistsByRelatedAndType(ctx, tenantID, saleID, inventory.EntryTypeProduction)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormLedgerRepository_FindOrphanedEntries(t *testing.T) {
	repo, db := setupLedgerRepo(t)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	ingredientID := uuid.New()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	log, err := inventory.NewProductionLog(tenantID, productID, decimal.NewFromInt(5), date, inventory.ProductionSourceManual)
	require.NoError(t, err)
	require.NoError(t, db.Create(log).Error)

	require.NoError(t, repo.Append(ctx,
		mustInflow(t, tenantID, productID, inventory.EntryTypeProductionIn, date, 5).WithRelated(log.ID),
		mustOutflow(t, tenantID, ingredientID, inventory.EntryTypeProductionOut, date, 10).WithRelated(log.ID),
	))

	orphans, err := repo.FindOrphanedEntries(ctx, tenantID)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	require.NoError(t, db.Delete(&inventory.ProductionLog{}, "id = ?", log.ID).Error)

	orphans, err = repo.FindOrphanedEntries(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, orphans, 2)

	ids := []uuid.UUID{orphans[0].ID, orphans[1].ID}
	require.NoError(t, repo.DeleteByIDs(ctx, tenantID, ids))

	orphans, err = repo.FindOrphanedEntries(ctx, tenantID)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestGormLedgerRepository_SummaryByProduct(t *testing.T) {
	repo, _ := setupLedgerRepo(t)
	ctx := context.Background()
	tenantID := uuid.New()
	first := uuid.New()
	second := uuid.New()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx,
		mustInflow(t, tenantID, first, inventory.EntryTypeOpening, date, 10),
		mustOutflow(t, tenantID, first, inventory.EntryTypeSale, date, 4),
		mustInflow(t, tenantID, second, inventory.EntryTypePurchase, date, 7),
	))

	rows, err := repo.SummaryByProduct(ctx, tenantID, inventory.ScopeAll())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byProduct := make(map[uuid.UUID]inventory.StockSummaryRow, len(rows))
	for _, row := range rows {
		byProduct[row.ProductID] = row
	}
	assert.Equal(t, "10", byProduct[first].TotalIn.String())
	assert.Equal(t, "4", byProduct[first].TotalOut.String())
	assert.Equal(t, "6", byProduct[first].Balance().String())
	assert.Equal(t, "7", byProduct[second].Balance().String())
}
