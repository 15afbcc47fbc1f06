package inventory_test

import (
	"context"
	"testing"
	"time"

	appinv "github.com/stockbook/backend/internal/application/inventory"
	"github.com/stockbook/backend/internal/domain/catalog"
	dominv "github.com/stockbook/backend/internal/domain/inventory"
	"github.com/stockbook/backend/internal/domain/shared"
	"github.com/stockbook/backend/internal/infrastructure/persistence"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	tenantID uuid.UUID

	products       *persistence.GormProductRepository
	ledger         *persistence.GormLedgerRepository
	formulas       *persistence.GormFormulaRepository
	productionLogs *persistence.GormProductionLogRepository

	ledgerService     *appinv.LedgerService
	productionService *appinv.ProductionService
	formulaService    *appinv.FormulaService
	recalcService     *appinv.RecalculationService
	adjustmentService *appinv.AdjustmentService
	auditService      *appinv.AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(persistence.Models()...))

	log := zap.NewNop()
	scope := persistence.NewGormTransactionScope(db)

	products := persistence.NewGormProductRepository(db)
	ledger := persistence.NewGormLedgerRepository(db)
	formulas := persistence.NewGormFormulaRepository(db)
	productionLogs := persistence.NewGormProductionLogRepository(db)

	recalcService := appinv.NewRecalculationService(scope, log)

	return &testEnv{
		db:                db,
		tenantID:          uuid.New(),
		products:          products,
		ledger:            ledger,
		formulas:          formulas,
		productionLogs:    productionLogs,
		ledgerService:     appinv.NewLedgerService(scope, ledger, products, log),
		productionService: appinv.NewProductionService(scope, productionLogs, log),
		formulaService:    appinv.NewFormulaService(scope, formulas, recalcService, log),
		recalcService:     recalcService,
		adjustmentService: appinv.NewAdjustmentService(scope, log),
		auditService:      appinv.NewAuditService(scope, ledger, log),
	}
}

func (env *testEnv) createProduct(t *testing.T, code, unit string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(env.tenantID, code, code+" product", unit)
	require.NoError(t, err)
	require.NoError(t, env.products.Save(context.Background(), product))
	return product
}

func (env *testEnv) createDualUnitProduct(t *testing.T, code, unit, secondary string, rate int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(env.tenantID, code, code+" product", unit)
	require.NoError(t, err)
	require.NoError(t, product.ConfigureDualUnits(secondary, decimal.NewFromInt(rate)))
	require.NoError(t, env.products.Save(context.Background(), product))
	return product
}

func (env *testEnv) addFormulaLine(t *testing.T, productID, ingredientID uuid.UUID, qty int64, mode dominv.UnitMode) {
	t.Helper()
	_, err := env.formulaService.UpsertLine(context.Background(), env.tenantID, appinv.UpsertFormulaLineCommand{
		ProductID:    productID,
		IngredientID: ingredientID,
		Quantity:     decimal.NewFromInt(qty),
		UnitMode:     mode,
	})
	require.NoError(t, err)
}

func (env *testEnv) balance(t *testing.T, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	balance, err := env.ledger.BalanceAsOf(context.Background(), env.tenantID, productID, dominv.ScopeAll())
	require.NoError(t, err)
	return balance
}

func (env *testEnv) entries(t *testing.T, productID uuid.UUID) []dominv.LedgerEntry {
	t.Helper()
	entries, err := env.ledger.Range(context.Background(), env.tenantID, productID, dominv.ScopeAll(), shared.Filter{})
	require.NoError(t, err)
	return entries
}

func (env *testEnv) entriesOfType(t *testing.T, productID uuid.UUID, entryType dominv.EntryType) []dominv.LedgerEntry {
	t.Helper()
	var matched []dominv.LedgerEntry
	for _, e := range env.entries(t, productID) {
		if e.EntryType == entryType {
			matched = append(matched, e)
		}
	}
	return matched
}

func day(d int) time.Time {
	return time.Date(2024, 5, d, 12, 0, 0, 0, time.UTC)
}

func TestRecordSaleAutoProduction(t *testing.T) {
	ctx := context.Background()

	t.Run("deficit sale produces and consumes ingredients", func(t *testing.T) {
		env := newTestEnv(t)
		gum := env.createProduct(t, "GUM", "NOS")
		pva := env.createDualUnitProduct(t, "PVA", "BAG", "KGS", 20)
		env.addFormulaLine(t, gum.ID, pva.ID, 6, dominv.UnitModeSecondary)

		saleID := uuid.New()
		err := env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
			SaleID:    saleID,
			ProductID: gum.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(4),
		})
		require.NoError(t, err)

		// Production covers the full deficit, so the finished good ends at zero.
		assert.True(t, env.balance(t, gum.ID).IsZero(), "finished good balance should be zero")

		production := env.entriesOfType(t, gum.ID, dominv.EntryTypeProduction)
		require.Len(t, production, 1)
		assert.Equal(t, "4", production[0].QuantityIn.String())
		require.NotNil(t, production[0].RelatedID)
		assert.Equal(t, saleID, *production[0].RelatedID)

		// 4 units need 24 KGS of PVA; at 20 KGS per BAG that is 1.2 BAG.
		consumption := env.entriesOfType(t, pva.ID, dominv.EntryTypeConsumption)
		require.Len(t, consumption, 1)
		assert.Equal(t, "1.2", consumption[0].QuantityOut.String())
		assert.Equal(t, "KGS", consumption[0].TransUnit)
		assert.Equal(t, "20", consumption[0].TransConversionRate.String())
		assert.Equal(t, "-1.2", env.balance(t, pva.ID).String())

		logs, err := env.productionLogs.FindBySale(ctx, env.tenantID, saleID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, dominv.ProductionSourceAuto, logs[0].Source)
		require.Len(t, logs[0].Items, 1)
		assert.Equal(t, "1.2", logs[0].Items[0].Quantity.String())
		assert.Equal(t, "24", logs[0].Items[0].EnteredQty.String())
	})

	t.Run("ten unit sale draws three bags", func(t *testing.T) {
		env := newTestEnv(t)
		gum := env.createProduct(t, "GUM", "NOS")
		pva := env.createDualUnitProduct(t, "PVA", "BAG", "KGS", 20)
		env.addFormulaLine(t, gum.ID, pva.ID, 6, dominv.UnitModeSecondary)

		err := env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
			SaleID:    uuid.New(),
			ProductID: gum.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(10),
		})
		require.NoError(t, err)

		consumption := env.entriesOfType(t, pva.ID, dominv.EntryTypeConsumption)
		require.Len(t, consumption, 1)
		assert.Equal(t, "3", consumption[0].QuantityOut.String())
	})

	t.Run("discrete unit ingredient draw rounds up", func(t *testing.T) {
		env := newTestEnv(t)
		gum := env.createProduct(t, "GUM", "NOS")
		carton := env.createProduct(t, "CARTON", "BOX")
		_, err := env.formulaService.UpsertLine(ctx, env.tenantID, appinv.UpsertFormulaLineCommand{
			ProductID:    gum.ID,
			IngredientID: carton.ID,
			Quantity:     decimal.RequireFromString("2.5"),
			UnitMode:     dominv.UnitModePrimary,
		})
		require.NoError(t, err)

		saleID := uuid.New()
		require.NoError(t, env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
			SaleID:    saleID,
			ProductID: gum.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(3),
		}))

		// 3 units need 7.5 cartons; boxes only move in whole numbers.
		consumption := env.entriesOfType(t, carton.ID, dominv.EntryTypeConsumption)
		require.Len(t, consumption, 1)
		assert.Equal(t, "8", consumption[0].QuantityOut.String())
		assert.Equal(t, "-8", env.balance(t, carton.ID).String())

		logs, err := env.productionLogs.FindBySale(ctx, env.tenantID, saleID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		require.Len(t, logs[0].Items, 1)
		assert.Equal(t, "8", logs[0].Items[0].Quantity.String())
		assert.Equal(t, "7.5", logs[0].Items[0].EnteredQty.String())
	})

	t.Run("sufficient stock triggers no production", func(t *testing.T) {
		env := newTestEnv(t)
		gum := env.createProduct(t, "GUM", "NOS")
		pva := env.createDualUnitProduct(t, "PVA", "BAG", "KGS", 20)
		env.addFormulaLine(t, gum.ID, pva.ID, 6, dominv.UnitModeSecondary)

		require.NoError(t, env.ledgerService.RecordOpening(ctx, env.tenantID, appinv.RecordOpeningCommand{
			ProductID: gum.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(10),
		}))

		err := env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
			SaleID:    uuid.New(),
			ProductID: gum.ID,
			Date:      day(2),
			Quantity:  decimal.NewFromInt(4),
		})
		require.NoError(t, err)

		assert.Empty(t, env.entriesOfType(t, gum.ID, dominv.EntryTypeProduction))
		assert.True(t, env.balance(t, pva.ID).IsZero())
		assert.Equal(t, "6", env.balance(t, gum.ID).String())
	})

	t.Run("deficit rounds up to batch multiple", func(t *testing.T) {
		env := newTestEnv(t)
		gum := env.createProduct(t, "GUM", "NOS")
		pva := env.createDualUnitProduct(t, "PVA", "BAG", "KGS", 20)
		env.addFormulaLine(t, gum.ID, pva.ID, 6, dominv.UnitModeSecondary)
		require.NoError(t, env.formulaService.SetBatchSize(ctx, env.tenantID, gum.ID, decimal.NewFromInt(10)))

		err := env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
			SaleID:    uuid.New(),
			ProductID: gum.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(15),
		})
		require.NoError(t, err)

		production := env.entriesOfType(t, gum.ID, dominv.EntryTypeProduction)
		require.Len(t, production, 1)
		assert.Equal(t, "20", production[0].QuantityIn.String())
		assert.Equal(t, "5", env.balance(t, gum.ID).String())
	})

	t.Run("weight unit sale keeps fractional production", func(t *testing.T) {
		env := newTestEnv(t)
		paste := env.createDualUnitProduct(t, "PASTE", "BAG", "KGS", 20)
		resin := env.createProduct(t, "RESIN", "KG")
		env.addFormulaLine(t, paste.ID, resin.ID, 2, dominv.UnitModePrimary)

		// 4 KGS entered is 0.2 BAG; weight units keep the fraction.
		err := env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
			SaleID:    uuid.New(),
			ProductID: paste.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(4),
			UnitMode:  dominv.UnitModeSecondary,
		})
		require.NoError(t, err)

		production := env.entriesOfType(t, paste.ID, dominv.EntryTypeProduction)
		require.Len(t, production, 1)
		assert.Equal(t, "0.2", production[0].QuantityIn.String())
		assert.True(t, env.balance(t, paste.ID).IsZero())

		// The resin draw stays fractional too: weight units are never
		// rounded up.
		consumption := env.entriesOfType(t, resin.ID, dominv.EntryTypeConsumption)
		require.Len(t, consumption, 1)
		assert.Equal(t, "0.4", consumption[0].QuantityOut.String())
	})

	t.Run("product without formula stays negative", func(t *testing.T) {
		env := newTestEnv(t)
		widget := env.createProduct(t, "WIDGET", "NOS")

		err := env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
			SaleID:    uuid.New(),
			ProductID: widget.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(5),
		})
		require.NoError(t, err)

		assert.Equal(t, "-5", env.balance(t, widget.ID).String())
		assert.Empty(t, env.entriesOfType(t, widget.ID, dominv.EntryTypeProduction))
	})

	t.Run("untracked product writes nothing", func(t *testing.T) {
		env := newTestEnv(t)
		service := env.createProduct(t, "SVC", "NOS")
		service.SetMaintainStock(false)
		require.NoError(t, env.products.Save(ctx, service))

		err := env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
			SaleID:    uuid.New(),
			ProductID: service.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(3),
		})
		require.NoError(t, err)
		assert.Empty(t, env.entries(t, service.ID))
	})
}

func TestRepairSale(t *testing.T) {
	ctx := context.Background()

	t.Run("repair is a no-op when production exists", func(t *testing.T) {
		env := newTestEnv(t)
		gum := env.createProduct(t, "GUM", "NOS")
		pva := env.createDualUnitProduct(t, "PVA", "BAG", "KGS", 20)
		env.addFormulaLine(t, gum.ID, pva.ID, 6, dominv.UnitModeSecondary)

		saleID := uuid.New()
		require.NoError(t, env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
			SaleID:    saleID,
			ProductID: gum.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(4),
		}))

		require.NoError(t, env.productionService.RepairSale(ctx, env.tenantID, appinv.RepairSaleCommand{
			SaleID:    saleID,
			ProductID: gum.ID,
			Date:      day(1),
		}))

		assert.Len(t, env.entriesOfType(t, gum.ID, dominv.EntryTypeProduction), 1)
		assert.Len(t, env.entriesOfType(t, pva.ID, dominv.EntryTypeConsumption), 1)
	})

	t.Run("repair rebuilds a missing production footprint", func(t *testing.T) {
		env := newTestEnv(t)
		gum := env.createProduct(t, "GUM", "NOS")
		pva := env.createDualUnitProduct(t, "PVA", "BAG", "KGS", 20)
		env.addFormulaLine(t, gum.ID, pva.ID, 6, dominv.UnitModeSecondary)

		saleID := uuid.New()
		require.NoError(t, env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
			SaleID:    saleID,
			ProductID: gum.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(4),
		}))

		// Simulate the historical bug: the production footprint is gone but
		// the sale row survives.
		require.NoError(t, env.ledger.DeleteByRelatedAndType(ctx, env.tenantID, saleID,
			dominv.EntryTypeProduction, dominv.EntryTypeConsumption))
		logs, err := env.productionLogs.FindBySale(ctx, env.tenantID, saleID)
		require.NoError(t, err)
		for i := range logs {
			require.NoError(t, env.productionLogs.Delete(ctx, env.tenantID, logs[i].ID))
		}
		assert.Equal(t, "-4", env.balance(t, gum.ID).String())

		require.NoError(t, env.productionService.RepairSale(ctx, env.tenantID, appinv.RepairSaleCommand{
			SaleID:    saleID,
			ProductID: gum.ID,
			Date:      day(2),
		}))

		assert.True(t, env.balance(t, gum.ID).IsZero())
		assert.Equal(t, "-1.2", env.balance(t, pva.ID).String())
	})
}

func TestDeleteSaleCascade(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gum := env.createProduct(t, "GUM", "NOS")
	pva := env.createDualUnitProduct(t, "PVA", "BAG", "KGS", 20)
	env.addFormulaLine(t, gum.ID, pva.ID, 6, dominv.UnitModeSecondary)

	saleID := uuid.New()
	require.NoError(t, env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
		SaleID:    saleID,
		ProductID: gum.ID,
		Date:      day(1),
		Quantity:  decimal.NewFromInt(4),
	}))

	require.NoError(t, env.productionService.DeleteSale(ctx, env.tenantID, saleID))

	assert.Empty(t, env.entries(t, gum.ID))
	assert.Empty(t, env.entries(t, pva.ID))
	logs, err := env.productionLogs.FindBySale(ctx, env.tenantID, saleID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestManualProduction(t *testing.T) {
	ctx := context.Background()

	t.Run("records output and ingredient draws", func(t *testing.T) {
		env := newTestEnv(t)
		cake := env.createProduct(t, "CAKE", "NOS")
		flour := env.createProduct(t, "FLOUR", "KG")
		env.addFormulaLine(t, cake.ID, flour.ID, 2, dominv.UnitModePrimary)

		log, err := env.productionService.RecordManualProduction(ctx, env.tenantID, appinv.RecordProductionCommand{
			ProductID: cake.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(5),
		})
		require.NoError(t, err)
		require.Len(t, log.Items, 1)
		assert.Equal(t, "10", log.Items[0].Quantity.String())

		assert.Equal(t, "5", env.balance(t, cake.ID).String())
		assert.Equal(t, "-10", env.balance(t, flour.ID).String())

		out := env.entriesOfType(t, flour.ID, dominv.EntryTypeProductionOut)
		require.Len(t, out, 1)
		require.NotNil(t, out[0].RelatedID)
		assert.Equal(t, log.ID, *out[0].RelatedID)
	})

	t.Run("untracked product is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		service := env.createProduct(t, "SVC", "NOS")
		service.SetMaintainStock(false)
		require.NoError(t, env.products.Save(ctx, service))

		_, err := env.productionService.RecordManualProduction(ctx, env.tenantID, appinv.RecordProductionCommand{
			ProductID: service.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, shared.ErrStockNotTracked)
	})

	t.Run("delete removes ledger rows and log", func(t *testing.T) {
		env := newTestEnv(t)
		cake := env.createProduct(t, "CAKE", "NOS")
		flour := env.createProduct(t, "FLOUR", "KG")
		env.addFormulaLine(t, cake.ID, flour.ID, 2, dominv.UnitModePrimary)

		log, err := env.productionService.RecordManualProduction(ctx, env.tenantID, appinv.RecordProductionCommand{
			ProductID: cake.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(5),
		})
		require.NoError(t, err)

		require.NoError(t, env.productionService.DeleteManualProduction(ctx, env.tenantID, log.ID))

		assert.Empty(t, env.entries(t, cake.ID))
		assert.Empty(t, env.entries(t, flour.ID))
		_, err = env.productionLogs.FindByID(ctx, env.tenantID, log.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestRecalculation(t *testing.T) {
	ctx := context.Background()

	t.Run("formula edit rewrites manual history", func(t *testing.T) {
		env := newTestEnv(t)
		cake := env.createProduct(t, "CAKE", "NOS")
		flour := env.createProduct(t, "FLOUR", "KG")
		env.addFormulaLine(t, cake.ID, flour.ID, 2, dominv.UnitModePrimary)

		_, err := env.productionService.RecordManualProduction(ctx, env.tenantID, appinv.RecordProductionCommand{
			ProductID: cake.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(5),
		})
		require.NoError(t, err)
		assert.Equal(t, "-10", env.balance(t, flour.ID).String())

		// Raising the line from 2 to 3 per unit rewrites the existing draw.
		env.addFormulaLine(t, cake.ID, flour.ID, 3, dominv.UnitModePrimary)

		out := env.entriesOfType(t, flour.ID, dominv.EntryTypeProductionOut)
		require.Len(t, out, 1)
		assert.Equal(t, "15", out[0].QuantityOut.String())
		assert.Equal(t, "-15", env.balance(t, flour.ID).String())

		// The output side is never touched.
		assert.Equal(t, "5", env.balance(t, cake.ID).String())
	})

	t.Run("recalculation is idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		cake := env.createProduct(t, "CAKE", "NOS")
		flour := env.createProduct(t, "FLOUR", "KG")
		env.addFormulaLine(t, cake.ID, flour.ID, 2, dominv.UnitModePrimary)

		_, err := env.productionService.RecordManualProduction(ctx, env.tenantID, appinv.RecordProductionCommand{
			ProductID: cake.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(5),
		})
		require.NoError(t, err)

		first, err := env.recalcService.Recalculate(ctx, env.tenantID, cake.ID)
		require.NoError(t, err)
		second, err := env.recalcService.Recalculate(ctx, env.tenantID, cake.ID)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		out := env.entriesOfType(t, flour.ID, dominv.EntryTypeProductionOut)
		assert.Len(t, out, 1)
		assert.Equal(t, "-10", env.balance(t, flour.ID).String())
	})

	t.Run("discrete draws stay whole after rewrite", func(t *testing.T) {
		env := newTestEnv(t)
		cake := env.createProduct(t, "CAKE", "NOS")
		carton := env.createProduct(t, "CARTON", "BOX")
		_, err := env.formulaService.UpsertLine(ctx, env.tenantID, appinv.UpsertFormulaLineCommand{
			ProductID:    cake.ID,
			IngredientID: carton.ID,
			Quantity:     decimal.RequireFromString("1.5"),
			UnitMode:     dominv.UnitModePrimary,
		})
		require.NoError(t, err)

		// 3 units need 4.5 cartons, drawn as 5.
		log, err := env.productionService.RecordManualProduction(ctx, env.tenantID, appinv.RecordProductionCommand{
			ProductID: cake.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(3),
		})
		require.NoError(t, err)
		require.Len(t, log.Items, 1)
		assert.Equal(t, "5", log.Items[0].Quantity.String())

		// Raising the line to 2.5 rewrites the draw as ceil(7.5).
		_, err = env.formulaService.UpsertLine(ctx, env.tenantID, appinv.UpsertFormulaLineCommand{
			ProductID:    cake.ID,
			IngredientID: carton.ID,
			Quantity:     decimal.RequireFromString("2.5"),
			UnitMode:     dominv.UnitModePrimary,
		})
		require.NoError(t, err)

		out := env.entriesOfType(t, carton.ID, dominv.EntryTypeProductionOut)
		require.Len(t, out, 1)
		assert.Equal(t, "8", out[0].QuantityOut.String())
		assert.Equal(t, "-8", env.balance(t, carton.ID).String())
	})

	t.Run("auto production is never rewritten", func(t *testing.T) {
		env := newTestEnv(t)
		gum := env.createProduct(t, "GUM", "NOS")
		pva := env.createDualUnitProduct(t, "PVA", "BAG", "KGS", 20)
		env.addFormulaLine(t, gum.ID, pva.ID, 6, dominv.UnitModeSecondary)

		require.NoError(t, env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
			SaleID:    uuid.New(),
			ProductID: gum.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(4),
		}))

		env.addFormulaLine(t, gum.ID, pva.ID, 12, dominv.UnitModeSecondary)

		consumption := env.entriesOfType(t, pva.ID, dominv.EntryTypeConsumption)
		require.Len(t, consumption, 1)
		assert.Equal(t, "1.2", consumption[0].QuantityOut.String())
	})
}

func TestAdjustmentsAndTransfers(t *testing.T) {
	ctx := context.Background()

	t.Run("adjustments move the balance both ways", func(t *testing.T) {
		env := newTestEnv(t)
		widget := env.createProduct(t, "WIDGET", "NOS")

		require.NoError(t, env.adjustmentService.Adjust(ctx, env.tenantID, appinv.AdjustStockCommand{
			ProductID: widget.ID,
			Direction: appinv.AdjustDirectionIn,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(5),
		}))
		require.NoError(t, env.adjustmentService.Adjust(ctx, env.tenantID, appinv.AdjustStockCommand{
			ProductID: widget.ID,
			Direction: appinv.AdjustDirectionOut,
			Date:      day(2),
			Quantity:  decimal.NewFromInt(2),
		}))

		assert.Equal(t, "3", env.balance(t, widget.ID).String())
	})

	t.Run("transfer moves stock atomically", func(t *testing.T) {
		env := newTestEnv(t)
		left := env.createProduct(t, "LEFT", "NOS")
		right := env.createProduct(t, "RIGHT", "NOS")

		require.NoError(t, env.adjustmentService.Adjust(ctx, env.tenantID, appinv.AdjustStockCommand{
			ProductID: left.ID,
			Direction: appinv.AdjustDirectionIn,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(3),
		}))

		require.NoError(t, env.adjustmentService.Transfer(ctx, env.tenantID, appinv.TransferStockCommand{
			FromProductID: left.ID,
			ToProductID:   right.ID,
			Date:          day(2),
			Quantity:      decimal.NewFromInt(2),
		}))

		assert.Equal(t, "1", env.balance(t, left.ID).String())
		assert.Equal(t, "2", env.balance(t, right.ID).String())
	})

	t.Run("self transfer is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		widget := env.createProduct(t, "WIDGET", "NOS")

		err := env.adjustmentService.Transfer(ctx, env.tenantID, appinv.TransferStockCommand{
			FromProductID: widget.ID,
			ToProductID:   widget.ID,
			Date:          day(1),
			Quantity:      decimal.NewFromInt(1),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "SELF_TRANSFER", domainErr.Code)
	})
}

func TestLedgerStatement(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	widget := env.createProduct(t, "WIDGET", "NOS")

	require.NoError(t, env.ledgerService.RecordOpening(ctx, env.tenantID, appinv.RecordOpeningCommand{
		ProductID: widget.ID,
		Date:      day(1),
		Quantity:  decimal.NewFromInt(10),
	}))
	require.NoError(t, env.ledgerService.RecordPurchase(ctx, env.tenantID, appinv.RecordPurchaseCommand{
		PurchaseID: uuid.New(),
		ProductID:  widget.ID,
		Date:       day(2),
		Quantity:   decimal.NewFromInt(5),
	}))
	require.NoError(t, env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
		SaleID:    uuid.New(),
		ProductID: widget.ID,
		Date:      day(2),
		Quantity:  decimal.NewFromInt(4),
	}))

	t.Run("full statement runs from zero", func(t *testing.T) {
		statement, err := env.ledgerService.Ledger(ctx, env.tenantID, &widget.ID, time.Time{}, time.Time{}, shared.Filter{})
		require.NoError(t, err)

		assert.True(t, statement.OpeningBalance.IsZero())
		assert.Equal(t, "11", statement.ClosingBalance.String())
		require.Len(t, statement.Rows, 3)

		// Same-day rows keep statement order: inflow before outflow.
		assert.Equal(t, dominv.EntryTypeOpening, statement.Rows[0].EntryType)
		assert.Equal(t, dominv.EntryTypePurchase, statement.Rows[1].EntryType)
		assert.Equal(t, dominv.EntryTypeSale, statement.Rows[2].EntryType)
		assert.Equal(t, "10", statement.Rows[0].RunningBalance.String())
		assert.Equal(t, "15", statement.Rows[1].RunningBalance.String())
		assert.Equal(t, "11", statement.Rows[2].RunningBalance.String())
	})

	t.Run("windowed statement carries the opening balance", func(t *testing.T) {
		statement, err := env.ledgerService.Ledger(ctx, env.tenantID, &widget.ID, day(2), time.Time{}, shared.Filter{})
		require.NoError(t, err)

		assert.Equal(t, "10", statement.OpeningBalance.String())
		require.Len(t, statement.Rows, 2)
		assert.Equal(t, "11", statement.ClosingBalance.String())
	})

	t.Run("balance respects the cutoff", func(t *testing.T) {
		cutoff := day(1)
		balance, err := env.ledgerService.Balance(ctx, env.tenantID, widget.ID, &cutoff)
		require.NoError(t, err)
		assert.Equal(t, "10", balance.Balance.String())
	})

	t.Run("tenant wide statement covers every product", func(t *testing.T) {
		env := newTestEnv(t)
		widget := env.createProduct(t, "WIDGET", "NOS")
		gadget := env.createProduct(t, "GADGET", "NOS")

		require.NoError(t, env.ledgerService.RecordOpening(ctx, env.tenantID, appinv.RecordOpeningCommand{
			ProductID: widget.ID,
			Date:      day(1),
			Quantity:  decimal.NewFromInt(10),
		}))
		require.NoError(t, env.ledgerService.RecordPurchase(ctx, env.tenantID, appinv.RecordPurchaseCommand{
			PurchaseID: uuid.New(),
			ProductID:  gadget.ID,
			Date:       day(1),
			Quantity:   decimal.NewFromInt(5),
		}))
		require.NoError(t, env.productionService.RecordSale(ctx, env.tenantID, appinv.RecordSaleCommand{
			SaleID:    uuid.New(),
			ProductID: widget.ID,
			Date:      day(2),
			Quantity:  decimal.NewFromInt(4),
		}))

		statement, err := env.ledgerService.Ledger(ctx, env.tenantID, nil, time.Time{}, time.Time{}, shared.Filter{})
		require.NoError(t, err)

		assert.Nil(t, statement.ProductID)
		require.Len(t, statement.Rows, 3)
		assert.Equal(t, widget.ID, statement.Rows[0].ProductID)
		assert.Equal(t, gadget.ID, statement.Rows[1].ProductID)
		assert.Equal(t, "11", statement.ClosingBalance.String())

		// The window opening carries the combined position of both products.
		windowed, err := env.ledgerService.Ledger(ctx, env.tenantID, nil, day(2), time.Time{}, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, "15", windowed.OpeningBalance.String())
		require.Len(t, windowed.Rows, 1)
		assert.Equal(t, "11", windowed.ClosingBalance.String())
	})

	t.Run("summary aggregates per product", func(t *testing.T) {
		summary, err := env.ledgerService.Summary(ctx, env.tenantID)
		require.NoError(t, err)
		require.Len(t, summary, 1)
		assert.Equal(t, "WIDGET", summary[0].ProductCode)
		assert.Equal(t, "15", summary[0].TotalIn.String())
		assert.Equal(t, "4", summary[0].TotalOut.String())
		assert.Equal(t, "11", summary[0].Balance.String())
	})
}

func TestAuditRepair(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	cake := env.createProduct(t, "CAKE", "NOS")
	flour := env.createProduct(t, "FLOUR", "KG")
	env.addFormulaLine(t, cake.ID, flour.ID, 2, dominv.UnitModePrimary)

	log, err := env.productionService.RecordManualProduction(ctx, env.tenantID, appinv.RecordProductionCommand{
		ProductID: cake.ID,
		Date:      day(1),
		Quantity:  decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	orphans, err := env.auditService.ListOrphans(ctx, env.tenantID)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	// Deleting the log directly leaves its ledger rows behind.
	require.NoError(t, env.productionLogs.Delete(ctx, env.tenantID, log.ID))

	orphans, err = env.auditService.ListOrphans(ctx, env.tenantID)
	require.NoError(t, err)
	assert.Len(t, orphans, 2)

	removed, err := env.auditService.Repair(ctx, env.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.True(t, env.balance(t, cake.ID).IsZero())
	assert.True(t, env.balance(t, flour.ID).IsZero())

	orphans, err = env.auditService.ListOrphans(ctx, env.tenantID)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestFormulaService(t *testing.T) {
	ctx := context.Background()

	t.Run("secondary mode requires dual units on the ingredient", func(t *testing.T) {
		env := newTestEnv(t)
		cake := env.createProduct(t, "CAKE", "NOS")
		flour := env.createProduct(t, "FLOUR", "KG")

		_, err := env.formulaService.UpsertLine(ctx, env.tenantID, appinv.UpsertFormulaLineCommand{
			ProductID:    cake.ID,
			IngredientID: flour.ID,
			Quantity:     decimal.NewFromInt(2),
			UnitMode:     dominv.UnitModeSecondary,
		})
		assert.ErrorIs(t, err, shared.ErrUnitNotConfigured)
	})

	t.Run("upsert replaces the existing line", func(t *testing.T) {
		env := newTestEnv(t)
		cake := env.createProduct(t, "CAKE", "NOS")
		flour := env.createProduct(t, "FLOUR", "KG")

		env.addFormulaLine(t, cake.ID, flour.ID, 2, dominv.UnitModePrimary)
		env.addFormulaLine(t, cake.ID, flour.ID, 3, dominv.UnitModePrimary)

		lines, err := env.formulaService.ListIngredients(ctx, env.tenantID, cake.ID)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "3", lines[0].Quantity.String())
	})

	t.Run("rejects a recipe loop", func(t *testing.T) {
		env := newTestEnv(t)
		dough := env.createProduct(t, "DOUGH", "KG")
		mix := env.createProduct(t, "MIX", "KG")
		crumb := env.createProduct(t, "CRUMB", "KG")
		env.addFormulaLine(t, dough.ID, mix.ID, 2, dominv.UnitModePrimary)
		env.addFormulaLine(t, mix.ID, crumb.ID, 1, dominv.UnitModePrimary)

		// crumb already feeds dough two recipe levels up, so dough cannot
		// become an ingredient of crumb.
		_, err := env.formulaService.UpsertLine(ctx, env.tenantID, appinv.UpsertFormulaLineCommand{
			ProductID:    crumb.ID,
			IngredientID: dough.ID,
			Quantity:     decimal.NewFromInt(1),
			UnitMode:     dominv.UnitModePrimary,
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORMULA_CYCLE", domainErr.Code)
	})

	t.Run("delete line removes it", func(t *testing.T) {
		env := newTestEnv(t)
		cake := env.createProduct(t, "CAKE", "NOS")
		flour := env.createProduct(t, "FLOUR", "KG")
		env.addFormulaLine(t, cake.ID, flour.ID, 2, dominv.UnitModePrimary)

		require.NoError(t, env.formulaService.DeleteLine(ctx, env.tenantID, cake.ID, flour.ID))

		lines, err := env.formulaService.ListIngredients(ctx, env.tenantID, cake.ID)
		require.NoError(t, err)
		assert.Empty(t, lines)

		err = env.formulaService.DeleteLine(ctx, env.tenantID, cake.ID, flour.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
