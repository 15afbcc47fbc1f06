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

// LedgerService records opening balances and purchases and answers balance,
// statement and summary queries. Sales go through ProductionService because
// they can trigger auto-production.
type LedgerService struct {
	scope       TransactionScope
	ledgerRepo  inventory.LedgerRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	scope TransactionScope,
	ledgerRepo inventory.LedgerRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		scope:       scope,
		ledgerRepo:  ledgerRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// RecordOpening writes an OPENING inflow for a stock-tracked product
func (s *LedgerService) RecordOpening(ctx context.Context, tenantID uuid.UUID, cmd RecordOpeningCommand) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := s.trackedProduct(ctx, repos, tenantID, cmd.ProductID)
		if err != nil {
			return err
		}

		converted, err := resolveEnteredQuantity(product, cmd.Quantity, cmd.UnitMode, s.logger)
		if err != nil {
			return err
		}

		entry, err := inventory.NewInflowEntry(tenantID, product.ID, inventory.EntryTypeOpening, cmd.Date, converted.BaseQty)
		if err != nil {
			return err
		}
		entry.WithConversion(converted.EnteredUnit, converted.Rate).WithRemarks(cmd.Remarks)

		return repos.Ledger().Append(ctx, entry)
	})
}

// RecordPurchase writes a PURCHASE inflow tied to the purchase record
func (s *LedgerService) RecordPurchase(ctx context.Context, tenantID uuid.UUID, cmd RecordPurchaseCommand) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := s.trackedProduct(ctx, repos, tenantID, cmd.ProductID)
		if err != nil {
			return err
		}

		converted, err := resolveEnteredQuantity(product, cmd.Quantity, cmd.UnitMode, s.logger)
		if err != nil {
			return err
		}

		entry, err := inventory.NewInflowEntry(tenantID, product.ID, inventory.EntryTypePurchase, cmd.Date, converted.BaseQty)
		if err != nil {
			return err
		}
		entry.WithRelated(cmd.PurchaseID).
			WithConversion(converted.EnteredUnit, converted.Rate).
			WithRemarks(cmd.Remarks)

		return repos.Ledger().Append(ctx, entry)
	})
}

// DeletePurchase removes the ledger footprint of a deleted purchase
func (s *LedgerService) DeletePurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Ledger().DeleteByRelatedAndType(ctx, tenantID, purchaseID, inventory.EntryTypePurchase)
	})
}

// Balance returns a product's net position, optionally as of a cutoff date
func (s *LedgerService) Balance(ctx context.Context, tenantID, productID uuid.UUID, asOf *time.Time) (*BalanceResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	scope := inventory.ScopeAll()
	if asOf != nil {
		scope = inventory.ScopeUpTo(*asOf)
	}

	balance, err := s.ledgerRepo.BalanceAsOf(ctx, tenantID, productID, scope)
	if err != nil {
		return nil, err
	}

	return &BalanceResponse{
		ProductID: productID,
		AsOf:      asOf,
		Balance:   balance,
		Unit:      product.Unit,
	}, nil
}

// Ledger returns a statement for a date range with running balances, for
// one product or, when productID is nil, across the whole tenant. Rows
// within a day keep statement order: opening first, then inflows, then
// outflows.
func (s *LedgerService) Ledger(ctx context.Context, tenantID uuid.UUID, productID *uuid.UUID, from, to time.Time, filter shared.Filter) (*LedgerResponse, error) {
	if productID != nil {
		if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, *productID); err != nil {
			return nil, err
		}
	}

	opening := decimal.Zero
	if !from.IsZero() {
		var err error
		opening, err = s.openingBalance(ctx, tenantID, productID, from)
		if err != nil {
			return nil, err
		}
	}

	dateScope := inventory.DateScope{From: from, To: to}
	var entries []inventory.LedgerEntry
	var err error
	if productID != nil {
		entries, err = s.ledgerRepo.Range(ctx, tenantID, *productID, dateScope, filter)
	} else {
		entries, err = s.ledgerRepo.RangeAll(ctx, tenantID, dateScope, filter)
	}
	if err != nil {
		return nil, err
	}

	rows := make([]LedgerRowResponse, 0, len(entries))
	running := opening
	for _, entry := range entries {
		running = running.Add(entry.SignedQuantity())
		rows = append(rows, toLedgerRowResponse(entry, running))
	}

	return &LedgerResponse{
		ProductID:      productID,
		OpeningBalance: opening,
		ClosingBalance: running,
		Rows:           rows,
	}, nil
}

// openingBalance is the position carried into the statement window. For the
// tenant-wide statement it is the sum of every product's balance before the
// window starts.
func (s *LedgerService) openingBalance(ctx context.Context, tenantID uuid.UUID, productID *uuid.UUID, from time.Time) (decimal.Decimal, error) {
	scope := inventory.ScopeUpTo(from.Add(-time.Nanosecond))
	if productID != nil {
		return s.ledgerRepo.BalanceAsOf(ctx, tenantID, *productID, scope)
	}

	rows, err := s.ledgerRepo.SummaryByProduct(ctx, tenantID, scope)
	if err != nil {
		return decimal.Zero, err
	}
	opening := decimal.Zero
	for _, row := range rows {
		opening = opening.Add(row.Balance())
	}
	return opening, nil
}

// Summary returns the aggregated position of every product with ledger activity
func (s *LedgerService) Summary(ctx context.Context, tenantID uuid.UUID) ([]StockSummaryResponse, error) {
	rows, err := s.ledgerRepo.SummaryByProduct(ctx, tenantID, inventory.ScopeAll())
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]StockSummaryResponse, 0, len(rows))
	for _, row := range rows {
		resp := StockSummaryResponse{
			ProductID: row.ProductID,
			TotalIn:   row.TotalIn,
			TotalOut:  row.TotalOut,
			Balance:   row.Balance(),
		}
		if p, ok := byID[row.ProductID]; ok {
			resp.ProductCode = p.Code
			resp.ProductName = p.Name
			resp.Unit = p.Unit
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *LedgerService) trackedProduct(ctx context.Context, repos TransactionalRepositories, tenantID, productID uuid.UUID) (*catalog.Product, error) {
	product, err := repos.Products().FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if !product.MaintainStock {
		return nil, shared.ErrStockNotTracked
	}
	return product, nil
}
