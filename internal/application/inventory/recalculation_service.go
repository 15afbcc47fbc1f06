package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/catalog"
	"github.com/stockbook/backend/internal/domain/inventory"
	"github.com/stockbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RecalculationService rewrites the ingredient side of a product's manual
// production history against the current recipe. For each manual log the
// PRODUCTION_OUT rows and items are deleted and recomputed from today's
// recipe scaled by the log's original output quantity; the PRODUCTION_IN
// side is never touched. Auto-production stays as recorded.
//
// Running it twice in a row yields the same rows, so callers may trigger it
// after every recipe edit without bookkeeping.
type RecalculationService struct {
	scope          TransactionScope
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewRecalculationService creates a new RecalculationService
func NewRecalculationService(scope TransactionScope, logger *zap.Logger) *RecalculationService {
	return &RecalculationService{
		scope:  scope,
		logger: logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *RecalculationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Recalculate rewrites the manual production history of one product in a
// single transaction and returns the number of logs rewritten
func (s *RecalculationService) Recalculate(ctx context.Context, tenantID, productID uuid.UUID) (int, error) {
	var rewritten int
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		rewritten, err = s.recalculateWithin(ctx, repos, tenantID, productID)
		return err
	})
	if err != nil {
		return 0, err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, inventory.NewFormulaRecalculatedEvent(tenantID, productID, rewritten))
	}
	return rewritten, nil
}

// recalculateWithin runs the rewrite inside an already-open transaction so
// recipe edits can recalculate atomically with the edit itself
func (s *RecalculationService) recalculateWithin(ctx context.Context, repos TransactionalRepositories, tenantID, productID uuid.UUID) (int, error) {
	product, err := repos.Products().FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return 0, err
	}

	logs, err := repos.ProductionLogs().FindManualByProduct(ctx, tenantID, productID)
	if err != nil {
		return 0, err
	}
	if len(logs) == 0 {
		return 0, nil
	}

	lines, err := repos.Formulas().FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return 0, err
	}

	ingredients := make(map[uuid.UUID]*catalog.Product, len(lines))
	if len(lines) > 0 {
		ids := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.IngredientID)
		}
		found, err := repos.Products().FindByIDs(ctx, tenantID, ids)
		if err != nil {
			return 0, err
		}
		for i := range found {
			ingredients[found[i].ID] = &found[i]
		}
	}

	baseQty := product.FormulaBaseQty
	if baseQty.IsZero() || baseQty.IsNegative() {
		baseQty = decimal.NewFromInt(1)
	}

	for i := range logs {
		log := &logs[i]
		if err := repos.Ledger().DeleteByRelatedAndType(ctx, tenantID, log.ID, inventory.EntryTypeProductionOut); err != nil {
			return 0, err
		}

		items := make([]inventory.ProductionItem, 0, len(lines))
		for _, line := range lines {
			ingredient, ok := ingredients[line.IngredientID]
			if !ok {
				return 0, shared.ErrNotFound
			}

			enteredQty := line.Quantity.Div(baseQty).Mul(log.Quantity).Round(quantityScale)
			converted, err := resolveIngredientDraw(ingredient, enteredQty, line.UnitMode, s.logger)
			if err != nil {
				return 0, err
			}

			entry, err := inventory.NewOutflowEntry(tenantID, ingredient.ID, inventory.EntryTypeProductionOut, log.LogDate, converted.BaseQty)
			if err != nil {
				return 0, err
			}
			entry.WithRelated(log.ID).WithConversion(converted.EnteredUnit, converted.Rate)
			if err := repos.Ledger().Append(ctx, entry); err != nil {
				return 0, err
			}

			items = append(items, inventory.ProductionItem{
				BaseEntity:      shared.NewBaseEntity(),
				ProductionLogID: log.ID,
				IngredientID:    ingredient.ID,
				Quantity:        converted.BaseQty,
				EnteredQty:      converted.EnteredQty,
				EnteredUnit:     converted.EnteredUnit,
			})
		}

		if err := repos.ProductionLogs().ReplaceItems(ctx, log, items); err != nil {
			return 0, err
		}
	}

	s.logger.Info("manual production history recalculated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("product_id", productID.String()),
		zap.Int("logs_rewritten", len(logs)),
	)
	return len(logs), nil
}
