package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/catalog"
	"github.com/stockbook/backend/internal/domain/inventory"
	"github.com/stockbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductionService owns every ledger write that involves production: sales
// with deficit-triggered auto-production, sale repair and deletion, and
// operator-entered production runs.
//
// Auto-production keeps the finished good's balance non-negative: when a
// sale would drive it below zero, the deficit is rounded up to a batch
// multiple, a PRODUCTION inflow covers it, and the recipe's ingredients are
// drawn down with CONSUMPTION outflows. Ingredient balances are allowed to
// go negative.
type ProductionService struct {
	scope          TransactionScope
	productionRepo inventory.ProductionLogRepository
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewProductionService creates a new ProductionService
func NewProductionService(scope TransactionScope, productionRepo inventory.ProductionLogRepository, logger *zap.Logger) *ProductionService {
	return &ProductionService{
		scope:          scope,
		productionRepo: productionRepo,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RecordSale writes the SALE outflow and, when the product has a recipe and
// the sale drives its balance negative, generates the covering production in
// the same transaction. Products excluded from stock tracking are skipped.
func (s *ProductionService) RecordSale(ctx context.Context, tenantID uuid.UUID, cmd RecordSaleCommand) error {
	var pendingEvents []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.Products().FindByIDForTenant(ctx, tenantID, cmd.ProductID)
		if err != nil {
			return err
		}
		if !product.MaintainStock {
			return nil
		}

		converted, err := resolveEnteredQuantity(product, cmd.Quantity, cmd.UnitMode, s.logger)
		if err != nil {
			return err
		}

		saleEntry, err := inventory.NewOutflowEntry(tenantID, product.ID, inventory.EntryTypeSale, cmd.Date, converted.BaseQty)
		if err != nil {
			return err
		}
		saleEntry.WithRelated(cmd.SaleID).
			WithConversion(converted.EnteredUnit, converted.Rate).
			WithRemarks(cmd.Remarks)
		if err := repos.Ledger().Append(ctx, saleEntry); err != nil {
			return err
		}

		events, err := s.coverDeficit(ctx, repos, tenantID, product, cmd.SaleID, cmd.Date, converted.EnteredUnit)
		if err != nil {
			return err
		}
		pendingEvents = events
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, pendingEvents)
	return nil
}

// RepairSale re-runs the deficit check for a sale whose production footprint
// is missing. A sale that already has a PRODUCTION row is left untouched,
// so repairing is idempotent and never doubles production.
func (s *ProductionService) RepairSale(ctx context.Context, tenantID uuid.UUID, cmd RepairSaleCommand) error {
	var pendingEvents []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.Ledger().ExistsByRelatedAndType(ctx, tenantID, cmd.SaleID, inventory.EntryTypeProduction)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		product, err := repos.Products().FindByIDForTenant(ctx, tenantID, cmd.ProductID)
		if err != nil {
			return err
		}
		if !product.MaintainStock {
			return nil
		}

		enteredUnit := product.Unit
		if cmd.UnitMode == inventory.UnitModeSecondary && product.HasDualUnits {
			enteredUnit = product.SecondaryUnit
		}

		events, err := s.coverDeficit(ctx, repos, tenantID, product, cmd.SaleID, cmd.Date, enteredUnit)
		if err != nil {
			return err
		}
		pendingEvents = events
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, pendingEvents)
	return nil
}

// DeleteSale removes the sale's entire ledger footprint, including any
// auto-production it triggered, in one transaction
func (s *ProductionService) DeleteSale(ctx context.Context, tenantID, saleID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Ledger().DeleteByRelated(ctx, tenantID, saleID); err != nil {
			return err
		}
		logs, err := repos.ProductionLogs().FindBySale(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		for i := range logs {
			if err := repos.ProductionLogs().Delete(ctx, tenantID, logs[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordManualProduction persists an operator-entered production run: a
// PRODUCTION_IN inflow for the output and a PRODUCTION_OUT outflow per
// recipe line, plus the log with its converted items
func (s *ProductionService) RecordManualProduction(ctx context.Context, tenantID uuid.UUID, cmd RecordProductionCommand) (*ProductionLogResponse, error) {
	var response *ProductionLogResponse
	var pendingEvents []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.Products().FindByIDForTenant(ctx, tenantID, cmd.ProductID)
		if err != nil {
			return err
		}
		if !product.MaintainStock {
			return shared.ErrStockNotTracked
		}

		log, err := inventory.NewProductionLog(tenantID, product.ID, cmd.Quantity, cmd.Date, inventory.ProductionSourceManual)
		if err != nil {
			return err
		}
		log.Remarks = cmd.Remarks

		outEntry, err := inventory.NewInflowEntry(tenantID, product.ID, inventory.EntryTypeProductionIn, cmd.Date, cmd.Quantity)
		if err != nil {
			return err
		}
		outEntry.WithRelated(log.ID).WithConversion(product.Unit, decimal.NewFromInt(1)).WithRemarks(cmd.Remarks)
		if err := repos.Ledger().Append(ctx, outEntry); err != nil {
			return err
		}

		draws, err := s.ingredientDraws(ctx, repos, tenantID, product, cmd.Quantity)
		if err != nil {
			return err
		}
		for _, draw := range draws {
			entry, err := inventory.NewOutflowEntry(tenantID, draw.ingredientID, inventory.EntryTypeProductionOut, cmd.Date, draw.converted.BaseQty)
			if err != nil {
				return err
			}
			entry.WithRelated(log.ID).WithConversion(draw.converted.EnteredUnit, draw.converted.Rate)
			if err := repos.Ledger().Append(ctx, entry); err != nil {
				return err
			}
			if err := log.AddItem(draw.ingredientID, draw.converted.BaseQty, draw.converted.EnteredQty, draw.converted.EnteredUnit); err != nil {
				return err
			}
		}

		if err := repos.ProductionLogs().Save(ctx, log); err != nil {
			return err
		}

		pendingEvents = log.GetDomainEvents()
		log.ClearDomainEvents()
		resp := toProductionLogResponse(*log)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pendingEvents)
	return response, nil
}

// DeleteManualProduction removes a production log, its items and its ledger rows
func (s *ProductionService) DeleteManualProduction(ctx context.Context, tenantID, logID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.ProductionLogs().FindByID(ctx, tenantID, logID); err != nil {
			return err
		}
		if err := repos.Ledger().DeleteByRelated(ctx, tenantID, logID); err != nil {
			return err
		}
		return repos.ProductionLogs().Delete(ctx, tenantID, logID)
	})
}

// GetProductionLogs returns a product's production history
func (s *ProductionService) GetProductionLogs(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]ProductionLogResponse, error) {
	logs, err := s.productionRepo.FindByProduct(ctx, tenantID, productID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ProductionLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, toProductionLogResponse(logs[i]))
	}
	return out, nil
}

// coverDeficit checks the finished good's balance after a sale and, when
// negative and a recipe exists, writes the covering PRODUCTION inflow and
// CONSUMPTION outflows tied to the sale.
//
// The deficit is rounded in two steps: up to a whole number unless the unit
// the sale was entered in allows fractions, then up to the next multiple of
// the product's batch size.
func (s *ProductionService) coverDeficit(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	product *catalog.Product,
	saleID uuid.UUID,
	date time.Time,
	saleEnteredUnit string,
) ([]shared.DomainEvent, error) {
	hasFormula, err := repos.Formulas().HasFormula(ctx, tenantID, product.ID)
	if err != nil {
		return nil, err
	}
	if !hasFormula {
		return nil, nil
	}

	balance, err := repos.Ledger().BalanceAsOf(ctx, tenantID, product.ID, inventory.ScopeAll())
	if err != nil {
		return nil, err
	}
	if !balance.IsNegative() {
		return nil, nil
	}

	deficit := balance.Neg()
	productionQty := deficit
	if !inventory.AllowsFractions(saleEnteredUnit) {
		productionQty = productionQty.Ceil()
	}
	batch := product.FormulaBaseQty
	if batch.GreaterThan(decimal.NewFromInt(1)) {
		productionQty = productionQty.Div(batch).Ceil().Mul(batch)
	}

	log, err := inventory.NewProductionLog(tenantID, product.ID, productionQty, date, inventory.ProductionSourceAuto)
	if err != nil {
		return nil, err
	}
	log.LinkSale(saleID)

	prodEntry, err := inventory.NewInflowEntry(tenantID, product.ID, inventory.EntryTypeProduction, date, productionQty)
	if err != nil {
		return nil, err
	}
	prodEntry.WithRelated(saleID).WithConversion(product.Unit, decimal.NewFromInt(1))
	if err := repos.Ledger().Append(ctx, prodEntry); err != nil {
		return nil, err
	}

	draws, err := s.ingredientDraws(ctx, repos, tenantID, product, productionQty)
	if err != nil {
		return nil, err
	}
	for _, draw := range draws {
		entry, err := inventory.NewOutflowEntry(tenantID, draw.ingredientID, inventory.EntryTypeConsumption, date, draw.converted.BaseQty)
		if err != nil {
			return nil, err
		}
		entry.WithRelated(saleID).WithConversion(draw.converted.EnteredUnit, draw.converted.Rate)
		if err := repos.Ledger().Append(ctx, entry); err != nil {
			return nil, err
		}
		if err := log.AddItem(draw.ingredientID, draw.converted.BaseQty, draw.converted.EnteredQty, draw.converted.EnteredUnit); err != nil {
			return nil, err
		}
	}

	if err := repos.ProductionLogs().Save(ctx, log); err != nil {
		return nil, err
	}

	s.logger.Info("auto production triggered",
		zap.String("tenant_id", tenantID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("sale_id", saleID.String()),
		zap.String("deficit", deficit.String()),
		zap.String("produced_qty", productionQty.String()),
	)

	events := log.GetDomainEvents()
	log.ClearDomainEvents()
	events = append(events, inventory.NewAutoProductionTriggeredEvent(log.ID, tenantID, product.ID, saleID, deficit, productionQty))
	return events, nil
}

// ingredientDraw is one ingredient's computed consumption for a production run
type ingredientDraw struct {
	ingredientID uuid.UUID
	converted    convertedQuantity
}

// ingredientDraws scales the product's recipe to the produced quantity and
// converts each line into the ingredient's primary unit
func (s *ProductionService) ingredientDraws(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	product *catalog.Product,
	producedQty decimal.Decimal,
) ([]ingredientDraw, error) {
	lines, err := repos.Formulas().FindByProduct(ctx, tenantID, product.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.IngredientID)
	}
	ingredients, err := repos.Products().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(ingredients))
	for i := range ingredients {
		byID[ingredients[i].ID] = &ingredients[i]
	}

	baseQty := product.FormulaBaseQty
	if baseQty.IsZero() || baseQty.IsNegative() {
		baseQty = decimal.NewFromInt(1)
	}

	draws := make([]ingredientDraw, 0, len(lines))
	for _, line := range lines {
		ingredient, ok := byID[line.IngredientID]
		if !ok {
			return nil, shared.ErrNotFound
		}

		enteredQty := line.Quantity.Div(baseQty).Mul(producedQty).Round(quantityScale)
		converted, err := resolveIngredientDraw(ingredient, enteredQty, line.UnitMode, s.logger)
		if err != nil {
			return nil, err
		}
		draws = append(draws, ingredientDraw{ingredientID: ingredient.ID, converted: converted})
	}
	return draws, nil
}

func (s *ProductionService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
