package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/inventory"
	"github.com/stockbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FormulaService manages product recipes. Line edits recalculate the
// product's manual production history inside the same transaction, so the
// recipe and its historical footprint can never disagree. Changing the
// batch size does not rewrite history.
type FormulaService struct {
	scope       TransactionScope
	formulaRepo inventory.FormulaRepository
	recalc      *RecalculationService
	logger      *zap.Logger
}

// NewFormulaService creates a new FormulaService
func NewFormulaService(scope TransactionScope, formulaRepo inventory.FormulaRepository, recalc *RecalculationService, logger *zap.Logger) *FormulaService {
	return &FormulaService{
		scope:       scope,
		formulaRepo: formulaRepo,
		recalc:      recalc,
		logger:      logger,
	}
}

// ListIngredients returns a product's recipe lines
func (s *FormulaService) ListIngredients(ctx context.Context, tenantID, productID uuid.UUID) ([]FormulaLineResponse, error) {
	lines, err := s.formulaRepo.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	out := make([]FormulaLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, toFormulaLineResponse(line))
	}
	return out, nil
}

// UpsertLine creates or replaces the recipe line for (product, ingredient)
// and recalculates the product's manual production history
func (s *FormulaService) UpsertLine(ctx context.Context, tenantID uuid.UUID, cmd UpsertFormulaLineCommand) (*FormulaLineResponse, error) {
	var response *FormulaLineResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.Products().FindByIDForTenant(ctx, tenantID, cmd.ProductID)
		if err != nil {
			return err
		}
		ingredient, err := repos.Products().FindByIDForTenant(ctx, tenantID, cmd.IngredientID)
		if err != nil {
			return err
		}
		if cmd.UnitMode == inventory.UnitModeSecondary && !ingredient.HasDualUnits {
			return shared.ErrUnitNotConfigured
		}
		if err := ensureNoRecipeCycle(ctx, repos, tenantID, product.ID, ingredient.ID); err != nil {
			return err
		}

		mode := cmd.UnitMode
		if mode == "" {
			mode = inventory.UnitModePrimary
		}

		line, err := repos.Formulas().FindLine(ctx, tenantID, product.ID, ingredient.ID)
		if err != nil {
			return err
		}
		if line != nil {
			if err := line.UpdateQuantity(cmd.Quantity, mode); err != nil {
				return err
			}
		} else {
			line, err = inventory.NewFormulaLine(tenantID, product.ID, ingredient.ID, cmd.Quantity, mode)
			if err != nil {
				return err
			}
		}
		if err := repos.Formulas().Save(ctx, line); err != nil {
			return err
		}

		if _, err := s.recalc.recalculateWithin(ctx, repos, tenantID, product.ID); err != nil {
			return err
		}

		resp := toFormulaLineResponse(*line)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// DeleteLine removes one recipe line and recalculates the product's manual
// production history
func (s *FormulaService) DeleteLine(ctx context.Context, tenantID, productID, ingredientID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		line, err := repos.Formulas().FindLine(ctx, tenantID, productID, ingredientID)
		if err != nil {
			return err
		}
		if line == nil {
			return shared.ErrNotFound
		}
		if err := repos.Formulas().Delete(ctx, tenantID, line.ID); err != nil {
			return err
		}

		_, err = s.recalc.recalculateWithin(ctx, repos, tenantID, productID)
		return err
	})
}

// ensureNoRecipeCycle rejects a line whose ingredient already consumes the
// output product somewhere up the where-used chain. Saving it would make
// production of either product require the other.
func ensureNoRecipeCycle(ctx context.Context, repos TransactionalRepositories, tenantID, productID, ingredientID uuid.UUID) error {
	seen := map[uuid.UUID]bool{productID: true}
	frontier := []uuid.UUID{productID}
	for len(frontier) > 0 {
		var next []uuid.UUID
		for _, id := range frontier {
			consumers, err := repos.Formulas().FindProductsUsing(ctx, tenantID, id)
			if err != nil {
				return err
			}
			for _, consumer := range consumers {
				if consumer == ingredientID {
					return shared.NewDomainError("FORMULA_CYCLE", "Recipe would make the product an ingredient of itself")
				}
				if !seen[consumer] {
					seen[consumer] = true
					next = append(next, consumer)
				}
			}
		}
		frontier = next
	}
	return nil
}

// SetBatchSize changes the quantity one recipe application produces. Only
// future production uses the new size; history keeps the draws it was
// recorded with.
func (s *FormulaService) SetBatchSize(ctx context.Context, tenantID, productID uuid.UUID, batchSize decimal.Decimal) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.Products().FindByIDForTenant(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		if err := product.SetFormulaBaseQty(batchSize); err != nil {
			return err
		}
		return repos.Products().Save(ctx, product)
	})
}
